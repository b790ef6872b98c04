package analysis

import (
	"sort"
	"time"

	"paceboard/internal/strava"
)

// Thresholds below which an activity tells nothing about steady-state
// pace or cardiac efficiency (warmups, strides, short jogs).
const (
	paceMinDistanceMeters       = 3000
	efficiencyMinDistanceMeters = 5000

	pacePointLimit       = 100
	efficiencyPointLimit = 200
)

// PacePoint is one activity's pace, for the stability series
type PacePoint struct {
	Date             time.Time
	Name             string
	DistanceKm       float64
	PaceSecondsPerKm float64
	HeartRate        *float64
}

// ComputePaceStability returns the pace of the last 100 activities over
// 3 km, chronological.
func ComputePaceStability(activities []strava.Activity) []PacePoint {
	var eligible []strava.Activity
	for _, a := range activities {
		if a.Distance > paceMinDistanceMeters {
			eligible = append(eligible, a)
		}
	}
	sortChronological(eligible)
	eligible = lastN(eligible, pacePointLimit)

	points := make([]PacePoint, 0, len(eligible))
	for _, a := range eligible {
		points = append(points, PacePoint{
			Date:             a.StartDateLocal,
			Name:             a.Name,
			DistanceKm:       round2(a.DistanceKm()),
			PaceSecondsPerKm: round1(a.PaceSecondsPerKm()),
			HeartRate:        a.AverageHeartrate,
		})
	}
	return points
}

// EfficiencyPoint is speed per heartbeat for one activity. Higher means
// the same pace cost fewer beats, a proxy for aerobic fitness.
type EfficiencyPoint struct {
	Date             time.Time
	Name             string
	PaceSecondsPerKm float64
	AvgHeartRate     float64
	MaxHeartRate     *float64
	Efficiency       float64
}

// ComputeCardiacEfficiency returns efficiency (km/h per bpm) for the
// last 200 activities over 5 km that carry a heart-rate reading.
// Activities without one are excluded, never zero-filled.
func ComputeCardiacEfficiency(activities []strava.Activity) []EfficiencyPoint {
	var eligible []strava.Activity
	for _, a := range activities {
		if a.AverageHeartrate != nil && *a.AverageHeartrate > 0 && a.Distance > efficiencyMinDistanceMeters {
			eligible = append(eligible, a)
		}
	}
	sortChronological(eligible)
	eligible = lastN(eligible, efficiencyPointLimit)

	points := make([]EfficiencyPoint, 0, len(eligible))
	for _, a := range eligible {
		speedKmh := a.AverageSpeed * 3.6
		points = append(points, EfficiencyPoint{
			Date:             a.StartDateLocal,
			Name:             a.Name,
			PaceSecondsPerKm: round1(a.PaceSecondsPerKm()),
			AvgHeartRate:     *a.AverageHeartrate,
			MaxHeartRate:     a.MaxHeartrate,
			Efficiency:       round4(speedKmh / *a.AverageHeartrate),
		})
	}
	return points
}

// LoadPoint pairs a 10k time with the training volume of the 30 days
// leading up to it.
type LoadPoint struct {
	Date           string
	Time10KSeconds int
	Volume30DayKm  float64
}

// ComputeLoadVsPerformance builds the training-load correlation dataset:
// every 10k-class attempt, chronological, each paired with the trailing
// 30-day distance total ending on its date. The window is the same
// day-keyed inclusive range as the rolling aggregate.
func ComputeLoadVsPerformance(c *Classifier, activities []strava.Activity) []LoadPoint {
	var runs []strava.Activity
	for _, a := range activities {
		if c.Matches(a.Distance, Class10K) {
			runs = append(runs, a)
		}
	}
	sortChronological(runs)

	points := make([]LoadPoint, 0, len(runs))
	for _, r := range runs {
		dayKey := r.StartDateLocal.Format(dayKeyFormat)
		windowStart := r.StartDateLocal.AddDate(0, 0, -30).Format(dayKeyFormat)

		volume := 0.0
		for _, a := range activities {
			k := a.StartDateLocal.Format(dayKeyFormat)
			if k >= windowStart && k <= dayKey {
				volume += a.Distance
			}
		}

		points = append(points, LoadPoint{
			Date:           dayKey,
			Time10KSeconds: r.MovingTime,
			Volume30DayKm:  round1(volume / 1000),
		})
	}
	return points
}

func sortChronological(activities []strava.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].StartDateLocal.Before(activities[j].StartDateLocal)
	})
}

func lastN(activities []strava.Activity, n int) []strava.Activity {
	if len(activities) > n {
		return activities[len(activities)-n:]
	}
	return activities
}
