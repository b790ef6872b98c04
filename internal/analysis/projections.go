package analysis

import (
	"math"
	"sort"
	"time"

	"paceboard/internal/config"
	"paceboard/internal/strava"
)

// Riegel predicts a race time at distance d2 from a known time t1 at
// distance d1: t2 = t1 * (d2/d1)^exponent. The classic exponent is 1.06.
func Riegel(t1, d1, d2, exponent float64) float64 {
	return t1 * math.Pow(d2/d1, exponent)
}

// Projection is a cross-distance time prediction built from the current
// best at the source class.
type Projection struct {
	Source            DistanceClass
	Target            DistanceClass
	ProjectedSeconds  int
	SourceTimeSeconds int
	SourceDate        time.Time
}

// projectionPairs are the supported source→target predictions. Shorter
// sources than 10k are too anaerobic to extrapolate a marathon from.
var projectionPairs = []struct {
	Source DistanceClass
	Target DistanceClass
}{
	{Class10K, ClassHalf},
	{Class10K, ClassMarathon},
	{ClassHalf, ClassMarathon},
}

// TimelinePoint carries the projections as they stood on one day,
// recomputed from the best time known up to that day. Fields are nil
// when no source record existed yet.
type TimelinePoint struct {
	Date             string
	HalfFrom10K      *int
	MarathonFrom10K  *int
	MarathonFromHalf *int
}

// Confidence is a coarse label for how much recent volume backs a
// projection. It is a heuristic, not a statistical interval.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Projections is the full projection view
type Projections struct {
	Current       []Projection
	Timeline      []TimelinePoint
	Confidence    Confidence
	Volume90DayKm float64
}

// ComputeProjections derives current race-time projections from class
// bests, a historical timeline of how they evolved, and a confidence
// label from rolling 90-day volume.
func ComputeProjections(cfg config.AnalyticsConfig, records map[DistanceClass][]Record, activities []strava.Activity, now time.Time) Projections {
	current := CurrentProjections(cfg, records)
	timeline := computeTimeline(cfg, records)

	vol90 := 0.0
	cutoff := now.AddDate(0, 0, -90)
	for _, a := range activities {
		if !a.StartDateLocal.Before(cutoff) {
			vol90 += a.Distance
		}
	}
	vol90 /= 1000

	confidence := ConfidenceLow
	switch {
	case vol90 > cfg.ConfidenceHighKm:
		confidence = ConfidenceHigh
	case vol90 > cfg.ConfidenceMediumKm:
		confidence = ConfidenceMedium
	}

	return Projections{
		Current:       current,
		Timeline:      timeline,
		Confidence:    confidence,
		Volume90DayKm: round1(vol90),
	}
}

// CurrentProjections builds one projection per supported pair from each
// source class's best attempt, skipping pairs whose source has no
// attempts.
func CurrentProjections(cfg config.AnalyticsConfig, records map[DistanceClass][]Record) []Projection {
	var current []Projection
	for _, pair := range projectionPairs {
		attempts := records[pair.Source]
		if len(attempts) == 0 {
			continue
		}
		best := attempts[0]
		projected := Riegel(
			float64(best.TimeSeconds),
			CanonicalMeters[pair.Source],
			CanonicalMeters[pair.Target],
			cfg.RiegelExponent,
		)
		current = append(current, Projection{
			Source:            pair.Source,
			Target:            pair.Target,
			ProjectedSeconds:  int(math.Round(projected)),
			SourceTimeSeconds: best.TimeSeconds,
			SourceDate:        best.Date,
		})
	}
	return current
}

// computeTimeline folds each source class's attempts chronologically,
// carrying the best-so-far time forward. Every day a new attempt lands,
// the projections from the running best are recorded, so the series only
// ever improves or holds flat.
func computeTimeline(cfg config.AnalyticsConfig, records map[DistanceClass][]Record) []TimelinePoint {
	points := make(map[string]*TimelinePoint)

	point := func(day string) *TimelinePoint {
		if p, ok := points[day]; ok {
			return p
		}
		p := &TimelinePoint{Date: day}
		points[day] = p
		return p
	}

	project := func(bestSeconds int, source, target DistanceClass) *int {
		v := int(math.Round(Riegel(
			float64(bestSeconds),
			CanonicalMeters[source],
			CanonicalMeters[target],
			cfg.RiegelExponent,
		)))
		return &v
	}

	for _, source := range []DistanceClass{Class10K, ClassHalf} {
		attempts := append([]Record(nil), records[source]...)
		sort.SliceStable(attempts, func(i, j int) bool {
			return attempts[i].Date.Before(attempts[j].Date)
		})

		runningBest := 0
		for _, r := range attempts {
			if runningBest == 0 || r.TimeSeconds < runningBest {
				runningBest = r.TimeSeconds
			}
			p := point(r.Date.Format("2006-01-02"))
			if source == Class10K {
				p.HalfFrom10K = project(runningBest, Class10K, ClassHalf)
				p.MarathonFrom10K = project(runningBest, Class10K, ClassMarathon)
			} else {
				p.MarathonFromHalf = project(runningBest, ClassHalf, ClassMarathon)
			}
		}
	}

	timeline := make([]TimelinePoint, 0, len(points))
	for _, p := range points {
		timeline = append(timeline, *p)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	return timeline
}
