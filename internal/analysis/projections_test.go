package analysis

import (
	"math"
	"testing"
	"time"

	"paceboard/internal/config"
	"paceboard/internal/strava"
)

func analyticsDefaults() config.AnalyticsConfig {
	return config.DefaultConfig().Analytics
}

func TestRiegelKnownValue(t *testing.T) {
	// A 40:00 10k projects to roughly 3h04 for the marathon.
	got := Riegel(2400, 10000, 42195, 1.06)
	if math.Round(got) != 11040 {
		t.Errorf("Riegel(2400, 10k, marathon) = %v, want ~11040", got)
	}
}

func TestRiegelMonotonicInTargetDistance(t *testing.T) {
	prev := 0.0
	for _, target := range []float64{5000, 10000, 21097.5, 42195} {
		got := Riegel(2400, 10000, target, 1.06)
		if got <= prev {
			t.Fatalf("Riegel not strictly increasing: f(%v) = %v after %v", target, got, prev)
		}
		prev = got
	}
}

func TestCurrentProjections(t *testing.T) {
	c := NewClassifier(nil)
	activities := []strava.Activity{
		run(1, "2024-03-01T08:00:00Z", 10000, 2400),
		run(2, "2024-01-01T08:00:00Z", 10000, 2600),
	}

	current := CurrentProjections(analyticsDefaults(), ComputeRecords(c, activities))
	if len(current) != 2 {
		t.Fatalf("got %d projections, want 2 (both from 10k; no half record)", len(current))
	}

	byTarget := map[DistanceClass]Projection{}
	for _, p := range current {
		byTarget[p.Target] = p
	}

	half := byTarget[ClassHalf]
	if half.ProjectedSeconds != 5295 {
		t.Errorf("half from 10k = %ds, want 5295", half.ProjectedSeconds)
	}
	marathon := byTarget[ClassMarathon]
	if marathon.ProjectedSeconds != 11040 {
		t.Errorf("marathon from 10k = %ds, want 11040", marathon.ProjectedSeconds)
	}
	if marathon.SourceTimeSeconds != 2400 {
		t.Errorf("source time = %ds, want the 10k best 2400", marathon.SourceTimeSeconds)
	}
}

func TestCurrentProjectionsIncludesHalfSource(t *testing.T) {
	c := NewClassifier(nil)
	activities := []strava.Activity{
		run(1, "2024-03-01T08:00:00Z", 10000, 2400),
		run(2, "2024-04-01T08:00:00Z", 21100, 5400),
	}

	current := CurrentProjections(analyticsDefaults(), ComputeRecords(c, activities))
	if len(current) != 3 {
		t.Fatalf("got %d projections, want 3", len(current))
	}

	var fromHalf *Projection
	for i := range current {
		if current[i].Source == ClassHalf {
			fromHalf = &current[i]
		}
	}
	if fromHalf == nil {
		t.Fatal("missing marathon-from-half projection")
	}
	if fromHalf.Target != ClassMarathon {
		t.Errorf("half source targets %s, want marathon", fromHalf.Target)
	}
}

func TestTimelineIsRunningBestFold(t *testing.T) {
	c := NewClassifier(nil)
	activities := []strava.Activity{
		run(1, "2024-01-01T08:00:00Z", 10000, 2700),
		run(2, "2024-02-01T08:00:00Z", 10000, 2500),
		run(3, "2024-03-01T08:00:00Z", 10000, 2650), // slower, must not regress
	}

	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	p := ComputeProjections(analyticsDefaults(), ComputeRecords(c, activities), activities, now)

	if len(p.Timeline) != 3 {
		t.Fatalf("got %d timeline points, want 3", len(p.Timeline))
	}
	for i, pt := range p.Timeline {
		if pt.MarathonFrom10K == nil {
			t.Fatalf("point %d missing marathon projection", i)
		}
	}
	first := *p.Timeline[0].MarathonFrom10K
	second := *p.Timeline[1].MarathonFrom10K
	third := *p.Timeline[2].MarathonFrom10K
	if second >= first {
		t.Errorf("new best should improve the projection: %d then %d", first, second)
	}
	if third != second {
		t.Errorf("slower attempt should hold the projection flat: %d then %d", second, third)
	}
	if p.Timeline[0].Date != "2024-01-01" {
		t.Errorf("timeline[0].Date = %q", p.Timeline[0].Date)
	}
}

func TestProjectionConfidence(t *testing.T) {
	c := NewClassifier(nil)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		runs  int     // runs in the last 90 days
		meter float64 // distance per run
		want  Confidence
	}{
		{"low volume", 5, 10000, ConfidenceLow},         // 50 km
		{"medium volume", 20, 10000, ConfidenceMedium},  // 200 km
		{"high volume", 40, 10000, ConfidenceHigh},      // 400 km
		{"boundary is exclusive", 15, 10000, ConfidenceLow}, // exactly 150 km
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var activities []strava.Activity
			for i := 0; i < tt.runs; i++ {
				activities = append(activities,
					run(int64(i), now.AddDate(0, 0, -i-1).Format(time.RFC3339), tt.meter, 3000))
			}
			p := ComputeProjections(analyticsDefaults(), ComputeRecords(c, activities), activities, now)
			if p.Confidence != tt.want {
				t.Errorf("confidence = %s, want %s (vol90 = %v km)", p.Confidence, tt.want, p.Volume90DayKm)
			}
		})
	}
}
