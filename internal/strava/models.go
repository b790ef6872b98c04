package strava

import "time"

// Activity is a single run as returned by the activities resource.
// The same shape is persisted verbatim in the local cache, so the JSON
// tags double as the cache schema. Missing distance or moving time
// decodes to zero, never to an absent value.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name,omitempty"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	AverageSpeed       float64   `json:"average_speed"`        // m/s
	AverageHeartrate   *float64  `json:"average_heartrate,omitempty"` // bpm
	MaxHeartrate       *float64  `json:"max_heartrate,omitempty"`     // bpm
	TotalElevationGain float64   `json:"total_elevation_gain,omitempty"`
	SummaryPolyline    string    `json:"summary_polyline,omitempty"` // opaque encoded path
}

// DistanceKm returns the activity distance in kilometers
func (a Activity) DistanceKm() float64 {
	return a.Distance / 1000
}

// PaceSecondsPerKm returns the average pace, or 0 for zero-distance activities
func (a Activity) PaceSecondsPerKm() float64 {
	if a.Distance <= 0 {
		return 0
	}
	return float64(a.MovingTime) / (a.Distance / 1000)
}
