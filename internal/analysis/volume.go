package analysis

import (
	"sort"
	"time"

	"paceboard/internal/strava"
)

const dayKeyFormat = "2006-01-02"

// WeekBucket is one ISO week of training load. MovingAvgKm is a trailing
// 4-week average: this week plus up to three preceding, never ahead.
type WeekBucket struct {
	Year          int
	Week          int
	Km            float64
	Runs          int
	TimeSeconds   int
	ElevationGain float64
	MovingAvgKm   float64
}

// ComputeWeekly buckets activities by ISO week (Thursday-anchored, so a
// week belongs to the year containing its Thursday). An optional year
// filter keeps only activities from the given calendar years.
func ComputeWeekly(activities []strava.Activity, years []int) []WeekBucket {
	yearSet := make(map[int]bool, len(years))
	for _, y := range years {
		yearSet[y] = true
	}

	type weekKey struct{ year, week int }
	buckets := make(map[weekKey]*WeekBucket)

	for _, a := range activities {
		if len(years) > 0 && !yearSet[a.StartDateLocal.Year()] {
			continue
		}
		isoYear, isoWeek := a.StartDateLocal.ISOWeek()
		key := weekKey{isoYear, isoWeek}
		b, ok := buckets[key]
		if !ok {
			b = &WeekBucket{Year: isoYear, Week: isoWeek}
			buckets[key] = b
		}
		b.Km += a.DistanceKm()
		b.Runs++
		b.TimeSeconds += a.MovingTime
		b.ElevationGain += a.TotalElevationGain
	}

	rows := make([]WeekBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Km = round2(b.Km)
		b.ElevationGain = round1(b.ElevationGain)
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Week < rows[j].Week
	})

	for i := range rows {
		start := i - 3
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for _, w := range rows[start : i+1] {
			sum += w.Km
		}
		rows[i].MovingAvgKm = round2(sum / float64(i+1-start))
	}

	return rows
}

// MonthBucket is one calendar month of training load
type MonthBucket struct {
	Year        int
	Month       time.Month
	Km          float64
	Runs        int
	TimeSeconds int
}

// ComputeMonthly buckets activities by calendar month, ascending
func ComputeMonthly(activities []strava.Activity) []MonthBucket {
	type monthKey struct {
		year  int
		month time.Month
	}
	buckets := make(map[monthKey]*MonthBucket)

	for _, a := range activities {
		key := monthKey{a.StartDateLocal.Year(), a.StartDateLocal.Month()}
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{Year: key.year, Month: key.month}
			buckets[key] = b
		}
		b.Km += a.DistanceKm()
		b.Runs++
		b.TimeSeconds += a.MovingTime
	}

	rows := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Km = round2(b.Km)
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// YearBucket is one calendar year of training load
type YearBucket struct {
	Year          int
	Km            float64
	Runs          int
	TimeSeconds   int
	ElevationGain float64
}

// ComputeYearly buckets activities by calendar year, ascending
func ComputeYearly(activities []strava.Activity) []YearBucket {
	buckets := make(map[int]*YearBucket)

	for _, a := range activities {
		year := a.StartDateLocal.Year()
		b, ok := buckets[year]
		if !ok {
			b = &YearBucket{Year: year}
			buckets[year] = b
		}
		b.Km += a.DistanceKm()
		b.Runs++
		b.TimeSeconds += a.MovingTime
		b.ElevationGain += a.TotalElevationGain
	}

	rows := make([]YearBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Km = round2(b.Km)
		b.ElevationGain = round1(b.ElevationGain)
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// RollingPoint is the trailing-window distance sum ending on one day
type RollingPoint struct {
	Date string
	Km   float64
}

// ComputeRolling produces one point per calendar day over the last
// 2*days days: the sum of distance in the trailing days-day window
// ending that day, inclusive. A true sliding window, so the series is
// comparable across bucket boundaries.
func ComputeRolling(activities []strava.Activity, days int, now time.Time) []RollingPoint {
	start := now.AddDate(0, 0, -2*days)

	daily := make(map[string]float64)
	for _, a := range activities {
		if a.StartDateLocal.Before(start) {
			continue
		}
		daily[a.StartDateLocal.Format(dayKeyFormat)] += a.DistanceKm()
	}

	var points []RollingPoint
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		dayKey := d.Format(dayKeyFormat)
		windowStart := d.AddDate(0, 0, -days).Format(dayKeyFormat)

		total := 0.0
		for k, km := range daily {
			if k >= windowStart && k <= dayKey {
				total += km
			}
		}
		points = append(points, RollingPoint{Date: dayKey, Km: round2(total)})
	}
	return points
}
