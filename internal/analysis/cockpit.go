package analysis

import (
	"fmt"
	"math"
	"time"

	"paceboard/internal/config"
	"paceboard/internal/strava"
)

// Alert levels
const (
	AlertWarning = "warning"
	AlertDanger  = "danger"
)

// Alert is a training-load warning shown on the cockpit
type Alert struct {
	Level   string
	Message string
}

// RecentRun is a recent activity with a GPS trace
type RecentRun struct {
	ID         int64
	Name       string
	Date       time.Time
	DistanceKm float64
	Polyline   string
}

// Cockpit is the at-a-glance summary view
type Cockpit struct {
	WeekVolumeKm    float64
	Volume90DayKm   float64
	Avg4WeekKm      float64
	PRLast90Days    int
	Projections     []Projection
	Alerts          []Alert
	TotalActivities int
	RecentRuns      []RecentRun
}

// Load-alert thresholds: a week more than 20% over the 4-week average
// risks overreaching; a 90-day volume 15% under the previous 90 days
// signals detraining.
const (
	overloadRatio   = 1.2
	detrainingRatio = 0.85
)

// ComputeCockpit derives the summary view: current-week and rolling
// volumes, load alerts, recent PR count and race projections.
func ComputeCockpit(cfg config.AnalyticsConfig, c *Classifier, activities []strava.Activity, now time.Time) Cockpit {
	weekStart := startOfWeek(now)
	d90 := now.AddDate(0, 0, -90)
	d28 := now.AddDate(0, 0, -28)
	d180 := now.AddDate(0, 0, -180)

	var weekVol, vol90, vol28, prev90 float64
	for _, a := range activities {
		dt := a.StartDateLocal
		if !dt.Before(weekStart) {
			weekVol += a.Distance
		}
		if !dt.Before(d90) {
			vol90 += a.Distance
		}
		if !dt.Before(d28) {
			vol28 += a.Distance
		}
		if !dt.Before(d180) && dt.Before(d90) {
			prev90 += a.Distance
		}
	}

	avg4w := vol28 / 4

	var alerts []Alert
	if avg4w > 0 && weekVol > avg4w*overloadRatio {
		pct := int(math.Round((weekVol/avg4w - 1) * 100))
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Message: fmt.Sprintf("This week's volume is +%d%% over the 4-week average", pct),
		})
	}
	if prev90 > 0 && vol90 < prev90*detrainingRatio {
		pct := int(math.Round((1 - vol90/prev90) * 100))
		alerts = append(alerts, Alert{
			Level:   AlertDanger,
			Message: fmt.Sprintf("90-day volume is down %d%%", pct),
		})
	}

	records := ComputeRecords(c, activities)

	pr90d := 0
	for _, attempts := range records {
		for _, r := range attempts {
			if r.IsBest && !r.Date.Before(d90) {
				pr90d++
			}
		}
	}

	var recent []RecentRun
	for _, a := range activities {
		if a.SummaryPolyline == "" {
			continue
		}
		recent = append(recent, RecentRun{
			ID:         a.ID,
			Name:       a.Name,
			Date:       a.StartDateLocal,
			DistanceKm: round2(a.DistanceKm()),
			Polyline:   a.SummaryPolyline,
		})
		if len(recent) == 10 {
			break
		}
	}

	return Cockpit{
		WeekVolumeKm:    round2(weekVol / 1000),
		Volume90DayKm:   round2(vol90 / 1000),
		Avg4WeekKm:      round2(avg4w / 1000),
		PRLast90Days:    pr90d,
		Projections:     CurrentProjections(cfg, records),
		Alerts:          alerts,
		TotalActivities: len(activities),
		RecentRuns:      recent,
	}
}

// startOfWeek returns midnight on the Monday of now's week
func startOfWeek(now time.Time) time.Time {
	offset := int(now.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	day := now.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
