package analysis

import (
	"testing"
	"time"

	"paceboard/internal/strava"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		now  string
		want string
	}{
		{"2024-06-12", "2024-06-10"}, // Wednesday -> Monday
		{"2024-06-10", "2024-06-10"}, // Monday -> itself
		{"2024-06-16", "2024-06-10"}, // Sunday belongs to the week before
	}
	for _, tt := range tests {
		got := startOfWeek(day(tt.now))
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("startOfWeek(%s) = %s, want %s", tt.now, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestComputeCockpit(t *testing.T) {
	c := NewClassifier(nil)
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC) // Wednesday

	activities := []strava.Activity{
		run(1, "2024-06-10T08:00:00Z", 10000, 2500), // this week, also a 10k PR
		run(2, "2024-06-11T08:00:00Z", 12000, 3700), // this week
		run(3, "2024-06-09T08:00:00Z", 8000, 2400),  // Sunday before: not this week
		run(4, "2024-04-01T08:00:00Z", 10000, 2600), // older 10k, within 90 days
	}

	cockpit := ComputeCockpit(analyticsDefaults(), c, activities, now)

	if cockpit.WeekVolumeKm != 22 {
		t.Errorf("WeekVolumeKm = %v, want 22", cockpit.WeekVolumeKm)
	}
	if cockpit.Volume90DayKm != 40 {
		t.Errorf("Volume90DayKm = %v, want 40", cockpit.Volume90DayKm)
	}
	if cockpit.TotalActivities != 4 {
		t.Errorf("TotalActivities = %d, want 4", cockpit.TotalActivities)
	}
	if cockpit.PRLast90Days != 1 {
		t.Errorf("PRLast90Days = %d, want 1 (the 2500s 10k)", cockpit.PRLast90Days)
	}
	if len(cockpit.Projections) == 0 {
		t.Error("expected projections from the 10k best")
	}
}

func TestCockpitOverloadAlert(t *testing.T) {
	c := NewClassifier(nil)
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

	// 30 km this week against a 4-week average of 10 km/week.
	activities := []strava.Activity{
		run(1, "2024-06-10T08:00:00Z", 15000, 4500),
		run(2, "2024-06-11T08:00:00Z", 15000, 4500),
		run(3, "2024-05-20T08:00:00Z", 10000, 3000),
	}

	cockpit := ComputeCockpit(analyticsDefaults(), c, activities, now)
	if len(cockpit.Alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(cockpit.Alerts), cockpit.Alerts)
	}
	if cockpit.Alerts[0].Level != AlertWarning {
		t.Errorf("alert level = %s, want %s", cockpit.Alerts[0].Level, AlertWarning)
	}
}

func TestCockpitDetrainingAlert(t *testing.T) {
	c := NewClassifier(nil)
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

	// 100 km in the previous 90-day block, 20 km in the current one.
	var activities []strava.Activity
	for i := 0; i < 10; i++ {
		d := now.AddDate(0, 0, -100-i*5)
		activities = append(activities, run(int64(i), d.Format(time.RFC3339), 10000, 3000))
	}
	activities = append(activities,
		run(100, now.AddDate(0, 0, -40).Format(time.RFC3339), 20000, 6000))

	cockpit := ComputeCockpit(analyticsDefaults(), c, activities, now)

	var danger *Alert
	for i := range cockpit.Alerts {
		if cockpit.Alerts[i].Level == AlertDanger {
			danger = &cockpit.Alerts[i]
		}
	}
	if danger == nil {
		t.Fatalf("expected a detraining alert, got %+v", cockpit.Alerts)
	}
}

func TestCockpitRecentRunsNeedPolylines(t *testing.T) {
	c := NewClassifier(nil)
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

	withTrace := run(1, "2024-06-10T08:00:00Z", 10000, 3000)
	withTrace.SummaryPolyline = "abc123"
	plain := run(2, "2024-06-11T08:00:00Z", 8000, 2400)

	cockpit := ComputeCockpit(analyticsDefaults(), c, []strava.Activity{plain, withTrace}, now)
	if len(cockpit.RecentRuns) != 1 {
		t.Fatalf("got %d recent runs, want 1 (only traced activities)", len(cockpit.RecentRuns))
	}
	if cockpit.RecentRuns[0].ID != 1 {
		t.Errorf("recent run ID = %d, want 1", cockpit.RecentRuns[0].ID)
	}
}
