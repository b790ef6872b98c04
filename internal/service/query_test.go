package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"paceboard/internal/analysis"
	"paceboard/internal/config"
	"paceboard/internal/store"
	"paceboard/internal/strava"
)

type fixedFetcher struct {
	activities []strava.Activity
}

func (f *fixedFetcher) FetchActivities(ctx context.Context, after time.Time) ([]strava.Activity, error) {
	return f.activities, nil
}

func newTestService(t *testing.T, activities []strava.Activity, now time.Time) *QueryService {
	t.Helper()
	db, err := store.OpenAt(":memory:")
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := clockwork.NewFakeClockAt(now)
	cfg := config.DefaultConfig()
	st := store.New(db, &fixedFetcher{activities: activities}, clock, cfg.Cache)
	return New(st, clock, cfg.Analytics)
}

func testRun(id int64, start string, distance float64, movingTime int) strava.Activity {
	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return strava.Activity{
		ID:             id,
		StartDateLocal: ts,
		Distance:       distance,
		MovingTime:     movingTime,
		AverageSpeed:   distance / float64(movingTime),
	}
}

func TestQueryServiceViews(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	activities := []strava.Activity{
		testRun(1, "2024-06-10T08:00:00Z", 10000, 2500),
		testRun(2, "2024-05-01T08:00:00Z", 21100, 5600),
		testRun(3, "2023-08-01T08:00:00Z", 10000, 2700),
	}
	svc := newTestService(t, activities, now)
	ctx := context.Background()

	cockpit, err := svc.Cockpit(ctx, false)
	if err != nil {
		t.Fatalf("Cockpit() error = %v", err)
	}
	if cockpit.Cockpit.TotalActivities != 3 {
		t.Errorf("TotalActivities = %d, want 3", cockpit.Cockpit.TotalActivities)
	}
	if cockpit.Sync.FromCache {
		t.Error("first call should have synced")
	}

	volume, err := svc.Volume(ctx, false, nil)
	if err != nil {
		t.Fatalf("Volume() error = %v", err)
	}
	if len(volume.Yearly) != 2 {
		t.Errorf("got %d year buckets, want 2", len(volume.Yearly))
	}
	if len(volume.Rolling90) == 0 {
		t.Error("rolling series should not be empty")
	}
	// Second call lands inside the staleness window.
	if !volume.Sync.FromCache {
		t.Error("second call should come from cache")
	}

	perf, err := svc.Performance(ctx, false)
	if err != nil {
		t.Fatalf("Performance() error = %v", err)
	}
	if len(perf.Records[analysis.Class10K]) != 2 {
		t.Errorf("got %d 10k records, want 2", len(perf.Records[analysis.Class10K]))
	}
	if len(perf.Projections.Current) != 3 {
		t.Errorf("got %d projections, want 3 (10k and half sources)", len(perf.Projections.Current))
	}

	an, err := svc.Analysis(ctx, false)
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if len(an.PaceStability) != 3 {
		t.Errorf("got %d pace points, want 3", len(an.PaceStability))
	}
	if len(an.LoadVsPerformance) != 2 {
		t.Errorf("got %d load points, want 2", len(an.LoadVsPerformance))
	}

	years, err := svc.Years(ctx)
	if err != nil {
		t.Fatalf("Years() error = %v", err)
	}
	if len(years) != 2 || years[0] != 2023 || years[1] != 2024 {
		t.Errorf("years = %v, want [2023 2024]", years)
	}
}
