package tui

import (
	"fmt"
	"time"

	"paceboard/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units formats distances, paces and times per the user's display config
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a Units helper for the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats meters in the preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// FormatKm formats a kilometer value in the preferred unit
func (u Units) FormatKm(km float64) string {
	return u.FormatDistance(km * metersPerKm)
}

// FormatPace formats a pace from total seconds over meters
func (u Units) FormatPace(seconds int, meters float64) string {
	if meters <= 0 || seconds <= 0 {
		return "-"
	}
	per := metersPerKm
	if u.cfg.PaceUnit == "min/mi" {
		per = metersPerMile
	}
	return u.FormatPaceSeconds(float64(seconds) / (meters / per))
}

// FormatPaceSeconds formats seconds-per-unit as m:ss
func (u Units) FormatPaceSeconds(paceSeconds float64) string {
	if paceSeconds <= 0 {
		return "-"
	}
	mins := int(paceSeconds) / 60
	secs := int(paceSeconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// DistanceLabel returns "km" or "mi"
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

// IsMiles reports whether distances display in miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

// FormatRaceTime formats a race duration as h:mm:ss, or m:ss under an hour
func FormatRaceTime(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSince renders how long ago a time was, coarsely
func FormatSince(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
