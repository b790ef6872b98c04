package analysis

import (
	"sort"
	"time"

	"paceboard/internal/strava"
)

// Record is one attempt at a distance class, derived fresh on every query
type Record struct {
	ActivityID     int64
	Date           time.Time
	TimeSeconds    int
	DistanceMeters float64
	Polyline       string

	// IsBest marks the fastest attempt of the class. PercentOffBest is
	// how far this attempt is off the best, in percent (0 for the best).
	IsBest         bool
	PercentOffBest float64
}

// PaceSecondsPerKm returns the pace over the canonical class distance,
// not the recorded one, so attempts stay comparable.
func (r Record) PaceSecondsPerKm(class DistanceClass) float64 {
	d := CanonicalMeters[class]
	if d == 0 || r.TimeSeconds == 0 {
		return 0
	}
	return float64(r.TimeSeconds) / (d / 1000)
}

// ComputeRecords derives, per distance class, all matching attempts
// sorted fastest first, with the best marked. A class with no attempts
// maps to an empty list.
func ComputeRecords(c *Classifier, activities []strava.Activity) map[DistanceClass][]Record {
	records := make(map[DistanceClass][]Record, len(Classes))

	for _, class := range Classes {
		var attempts []Record
		for _, a := range activities {
			if !c.Matches(a.Distance, class) {
				continue
			}
			attempts = append(attempts, Record{
				ActivityID:     a.ID,
				Date:           a.StartDateLocal,
				TimeSeconds:    a.MovingTime,
				DistanceMeters: a.Distance,
				Polyline:       a.SummaryPolyline,
			})
		}

		// Equal times keep their original activity order.
		sort.SliceStable(attempts, func(i, j int) bool {
			return attempts[i].TimeSeconds < attempts[j].TimeSeconds
		})

		if len(attempts) > 0 {
			best := attempts[0].TimeSeconds
			for i := range attempts {
				attempts[i].IsBest = attempts[i].TimeSeconds == best
				if best > 0 {
					off := float64(attempts[i].TimeSeconds-best) / float64(best) * 100
					attempts[i].PercentOffBest = round1(off)
				}
			}
		}

		records[class] = attempts
	}

	return records
}

// YearBest is the fastest attempt of a class within a calendar year
type YearBest struct {
	Year        int
	TimeSeconds int
	Date        time.Time
}

// BestByYear reduces each class's attempts to one best per calendar
// year, sorted chronologically.
func BestByYear(records map[DistanceClass][]Record) map[DistanceClass][]YearBest {
	result := make(map[DistanceClass][]YearBest, len(records))

	for class, attempts := range records {
		byYear := make(map[int]YearBest)
		for _, r := range attempts {
			year := r.Date.Year()
			if cur, ok := byYear[year]; !ok || r.TimeSeconds < cur.TimeSeconds {
				byYear[year] = YearBest{Year: year, TimeSeconds: r.TimeSeconds, Date: r.Date}
			}
		}

		bests := make([]YearBest, 0, len(byYear))
		for _, b := range byYear {
			bests = append(bests, b)
		}
		sort.Slice(bests, func(i, j int) bool { return bests[i].Year < bests[j].Year })
		result[class] = bests
	}

	return result
}
