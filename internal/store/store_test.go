package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"

	"paceboard/internal/config"
	"paceboard/internal/strava"
)

type fakeFetcher struct {
	activities []strava.Activity
	err        error
	calls      int
	lastAfter  time.Time
}

func (f *fakeFetcher) FetchActivities(ctx context.Context, after time.Time) ([]strava.Activity, error) {
	f.calls++
	f.lastAfter = after
	if f.err != nil {
		return nil, f.err
	}
	return f.activities, nil
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{StaleMinutes: 15, CursorBackoffSeconds: 3600}
}

func newTestStore(t *testing.T, fetcher Fetcher, clock clockwork.Clock) (*Store, *DB) {
	t.Helper()
	db, err := OpenAt(":memory:")
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, fetcher, clock, testCacheConfig()), db
}

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
	}
}

func TestActivitiesFirstSyncFetchesFullHistory(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-01T08:00:00Z", 10000, 3000),
		run(2, "2024-06-03T08:00:00Z", 5000, 1500),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	res, err := store.Activities(context.Background(), false)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if !fetcher.lastAfter.IsZero() {
		t.Errorf("first sync should fetch full history, got after = %v", fetcher.lastAfter)
	}
	if res.FromCache {
		t.Error("first sync should not report FromCache")
	}
	if len(res.Activities) != 2 {
		t.Fatalf("got %d activities, want 2", len(res.Activities))
	}
	if res.Activities[0].ID != 2 {
		t.Errorf("activities should be newest first, got ID %d first", res.Activities[0].ID)
	}
}

func TestActivitiesServesCacheWithinStaleWindow(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-01T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	clock.Advance(10 * time.Minute)
	res, err := store.Activities(context.Background(), false)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 (cache still fresh)", fetcher.calls)
	}
	if !res.FromCache {
		t.Error("result should report FromCache")
	}
	if len(res.Activities) != 1 {
		t.Errorf("got %d activities, want 1", len(res.Activities))
	}
}

func TestActivitiesStaleCacheSyncsWithBackedOffCursor(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	clock.Advance(20 * time.Minute)
	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("fetcher calls = %d, want 2 (cache past stale window)", fetcher.calls)
	}

	want := time.Date(2024, 6, 9, 7, 0, 0, 0, time.UTC)
	if !fetcher.lastAfter.Equal(want) {
		t.Errorf("cursor = %v, want %v (latest minus one hour)", fetcher.lastAfter, want)
	}
}

func TestActivitiesForceRefreshBypassesStaleWindow(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	clock.Advance(time.Minute)
	if _, err := store.Activities(context.Background(), true); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2 (force refresh)", fetcher.calls)
	}
}

func TestActivitiesMergeFreshCopyWins(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
		run(2, "2024-06-08T08:00:00Z", 5000, 1500),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	// The overlapping activity comes back edited; the new copy must win.
	renamed := run(1, "2024-06-09T08:00:00Z", 10000, 3000)
	renamed.Name = "Renamed Run"
	fetcher.activities = []strava.Activity{
		renamed,
		run(3, "2024-06-10T08:00:00Z", 8000, 2400),
	}

	clock.Advance(20 * time.Minute)
	res, err := store.Activities(context.Background(), false)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if len(res.Activities) != 3 {
		t.Fatalf("got %d activities, want 3 after dedup", len(res.Activities))
	}
	if res.Activities[0].ID != 3 || res.Activities[1].ID != 1 || res.Activities[2].ID != 2 {
		t.Errorf("order = %d,%d,%d, want 3,1,2",
			res.Activities[0].ID, res.Activities[1].ID, res.Activities[2].ID)
	}
	if res.Activities[1].Name != "Renamed Run" {
		t.Errorf("duplicate resolved to cached copy, name = %q", res.Activities[1].Name)
	}
}

func TestActivitiesSyncIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
		run(2, "2024-06-08T08:00:00Z", 5000, 1500),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	for i := 0; i < 3; i++ {
		res, err := store.Activities(context.Background(), true)
		if err != nil {
			t.Fatalf("Activities() error = %v", err)
		}
		if len(res.Activities) != 2 {
			t.Fatalf("pass %d: got %d activities, want 2", i, len(res.Activities))
		}
	}
}

// blockingFetcher parks inside the fetch until released, so a test can
// hold a sync in flight while more callers arrive.
type blockingFetcher struct {
	mu         sync.Mutex
	calls      int
	entered    chan struct{}
	release    chan struct{}
	activities []strava.Activity
}

func (f *blockingFetcher) FetchActivities(ctx context.Context, after time.Time) ([]strava.Activity, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.entered <- struct{}{}
	<-f.release
	return f.activities, nil
}

func TestActivitiesConcurrentForcedSyncsCollapse(t *testing.T) {
	fetcher := &blockingFetcher{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
		activities: []strava.Activity{
			run(1, "2024-06-09T08:00:00Z", 10000, 3000),
		},
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	type outcome struct {
		res *FetchResult
		err error
	}
	outcomes := make(chan outcome, 2)
	call := func() {
		res, err := store.Activities(context.Background(), true)
		outcomes <- outcome{res, err}
	}

	go call()
	<-fetcher.entered // first caller is inside the fetch

	go call()
	time.Sleep(100 * time.Millisecond) // let the second caller join the in-flight sync
	close(fetcher.release)

	for i := 0; i < 2; i++ {
		o := <-outcomes
		if o.err != nil {
			t.Fatalf("Activities() error = %v", o.err)
		}
		if len(o.res.Activities) != 1 {
			t.Errorf("caller %d got %d activities, want the merged 1", i, len(o.res.Activities))
		}
	}

	fetcher.mu.Lock()
	calls := fetcher.calls
	fetcher.mu.Unlock()
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (concurrent forced syncs should collapse)", calls)
	}
}

func TestActivitiesNetworkFailureServesCache(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	fetcher.err = &strava.NetworkError{Status: 502, Err: errors.New("bad gateway")}
	clock.Advance(time.Hour)

	res, err := store.Activities(context.Background(), false)
	if err != nil {
		t.Fatalf("Activities() error = %v, want cache fallback", err)
	}
	if !res.FromCache {
		t.Error("fallback result should report FromCache")
	}
	if res.SyncErr == nil {
		t.Error("fallback result should carry the sync error")
	}
	if len(res.Activities) != 1 {
		t.Errorf("got %d activities, want cached 1", len(res.Activities))
	}
}

func TestActivitiesNetworkFailureWithoutCacheFails(t *testing.T) {
	fetcher := &fakeFetcher{err: &strava.NetworkError{Status: 502, Err: errors.New("bad gateway")}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	_, err := store.Activities(context.Background(), false)
	var netErr *strava.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want *strava.NetworkError", err)
	}
}

func TestActivitiesAuthErrorAlwaysPropagates(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	fetcher.err = &strava.AuthError{Status: 401, Err: errors.New("unauthorized")}
	clock.Advance(time.Hour)

	_, err := store.Activities(context.Background(), false)
	var authErr *strava.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *strava.AuthError even with a warm cache", err)
	}
}

func TestActivitiesCorruptCacheTriggersFullSync(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, db := newTestStore(t, fetcher, clock)

	if _, err := db.Exec(`INSERT INTO cache (key, value) VALUES ('activities', 'not json')`); err != nil {
		t.Fatalf("seeding corrupt cache: %v", err)
	}

	res, err := store.Activities(context.Background(), false)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if !fetcher.lastAfter.IsZero() {
		t.Errorf("corrupt cache should fall back to full history, got after = %v", fetcher.lastAfter)
	}
	if len(res.Activities) != 1 {
		t.Errorf("got %d activities, want 1", len(res.Activities))
	}
}

func TestCacheInfoAndClear(t *testing.T) {
	fetcher := &fakeFetcher{activities: []strava.Activity{
		run(1, "2024-06-09T08:00:00Z", 10000, 3000),
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	store, _ := newTestStore(t, fetcher, clock)

	meta, fresh := store.CacheInfo()
	if fresh || meta.LastSync != 0 {
		t.Errorf("empty cache: meta = %+v, fresh = %v", meta, fresh)
	}

	if _, err := store.Activities(context.Background(), false); err != nil {
		t.Fatalf("Activities() error = %v", err)
	}

	meta, fresh = store.CacheInfo()
	if !fresh {
		t.Error("cache should be fresh right after a sync")
	}
	if meta.Count != 1 {
		t.Errorf("meta.Count = %d, want 1", meta.Count)
	}
	if meta.LatestDate == nil || *meta.LatestDate != "2024-06-09T08:00:00Z" {
		t.Errorf("meta.LatestDate = %v", meta.LatestDate)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	meta, fresh = store.CacheInfo()
	if fresh || meta.Count != 0 {
		t.Errorf("after clear: meta = %+v, fresh = %v", meta, fresh)
	}
}

func testToken(access, refresh string, expiry time.Time) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, RefreshToken: refresh, Expiry: expiry}
}

func TestAuthRoundTrip(t *testing.T) {
	db, err := OpenAt(":memory:")
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	defer db.Close()

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth() on empty db error = %v, want ErrNoAuth", err)
	}

	tok := testToken("acc", "ref", time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	if err := db.SaveAuth(42, tok); err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}

	a, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if a.AthleteID != 42 || a.AccessToken != "acc" || a.RefreshToken != "ref" {
		t.Errorf("auth = %+v", a)
	}
	if !a.ExpiresAt.Equal(tok.Expiry) {
		t.Errorf("ExpiresAt = %v, want %v", a.ExpiresAt, tok.Expiry)
	}

	if err := db.UpdateTokens(testToken("acc2", "ref2", tok.Expiry.Add(6*time.Hour))); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}
	a, err = db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if a.AccessToken != "acc2" || a.AthleteID != 42 {
		t.Errorf("auth after update = %+v", a)
	}
}
