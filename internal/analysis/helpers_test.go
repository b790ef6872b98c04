package analysis

import (
	"time"

	"paceboard/internal/strava"
)

func run(id int64, start string, distance float64, movingTime int) strava.Activity {
	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return strava.Activity{
		ID:             id,
		StartDateLocal: ts,
		Distance:       distance,
		MovingTime:     movingTime,
		AverageSpeed:   speedFor(distance, movingTime),
	}
}

func speedFor(distance float64, movingTime int) float64 {
	if movingTime == 0 {
		return 0
	}
	return distance / float64(movingTime)
}

func withHR(a strava.Activity, avg float64) strava.Activity {
	a.AverageHeartrate = &avg
	return a
}

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}
