package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"paceboard/internal/config"
	"paceboard/internal/strava"
)

// Fetcher is the single network call a sync needs. A zero after time
// requests the full activity history.
type Fetcher interface {
	FetchActivities(ctx context.Context, after time.Time) ([]strava.Activity, error)
}

// Store serves the activity list, keeping the local cache in sync with
// the remote API. Reads within the staleness window never touch the
// network; anything else triggers an incremental sync that merges fresh
// activities over the cached ones and persists the result.
type Store struct {
	db      *DB
	fetcher Fetcher
	clock   clockwork.Clock
	cfg     config.CacheConfig
	log     *logrus.Entry

	group singleflight.Group
}

// New creates a Store around an open database and a fetcher
func New(db *DB, fetcher Fetcher, clock clockwork.Clock, cfg config.CacheConfig) *Store {
	return &Store{
		db:      db,
		fetcher: fetcher,
		clock:   clock,
		cfg:     cfg,
		log:     logrus.WithField("component", "store"),
	}
}

// Activities returns the full activity list, newest first.
//
// When the cache was synced within the staleness window and forceRefresh
// is false, the cached list is returned without a network call.
// Otherwise a sync runs: one fetch with the cursor backed off one hour
// behind the newest cached activity, merged over the cache with fresh
// copies winning, then persisted. If the sync fails but a previous sync
// ever succeeded, the cached list is served with SyncErr set; auth
// failures and a failed first sync are returned as errors.
func (s *Store) Activities(ctx context.Context, forceRefresh bool) (*FetchResult, error) {
	cached, meta := s.db.LoadCache()

	if !forceRefresh && len(cached) > 0 && meta.LastSync > 0 {
		age := s.clock.Now().Sub(meta.LastSyncTime())
		if age >= 0 && age < s.cfg.StaleWindow() {
			return &FetchResult{
				Activities: cached,
				FromCache:  true,
				SyncedAt:   meta.LastSyncTime(),
			}, nil
		}
	}

	// Concurrent refreshes collapse into one sync; the sync keeps
	// running even if the caller that started it goes away.
	v, err, _ := s.group.Do("sync", func() (interface{}, error) {
		return s.sync(context.WithoutCancel(ctx))
	})
	if err == nil {
		return v.(*FetchResult), nil
	}

	var authErr *strava.AuthError
	if errors.As(err, &authErr) {
		return nil, err
	}
	if meta.LastSync == 0 {
		return nil, err
	}

	s.log.WithError(err).Warn("sync failed, serving cached activities")
	return &FetchResult{
		Activities: cached,
		FromCache:  true,
		SyncedAt:   meta.LastSyncTime(),
		SyncErr:    err,
	}, nil
}

// sync performs one fetch-merge-persist cycle against the current cache
func (s *Store) sync(ctx context.Context) (*FetchResult, error) {
	cached, meta := s.db.LoadCache()

	var after time.Time
	if len(cached) > 0 && meta.LatestDate != nil {
		latest, err := time.Parse(time.RFC3339, *meta.LatestDate)
		if err == nil {
			// Back the cursor off so activities edited or uploaded
			// late near the boundary are re-fetched and deduplicated.
			after = latest.Add(-s.cfg.CursorBackoff())
		}
	}

	fresh, err := s.fetcher.FetchActivities(ctx, after)
	if err != nil {
		return nil, err
	}

	var merged []strava.Activity
	if after.IsZero() {
		// Full-history fetch: the response is authoritative.
		merged = dedupe(fresh)
	} else {
		merged = dedupe(append(fresh, cached...))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartDateLocal.After(merged[j].StartDateLocal)
	})

	now := s.clock.Now()
	newMeta := SyncMeta{
		LastSync: now.UnixMilli(),
		Count:    len(merged),
	}
	if len(merged) > 0 {
		latest := merged[0].StartDateLocal.Format(time.RFC3339)
		newMeta.LatestDate = &latest
	}

	if err := s.db.SaveCache(merged, newMeta); err != nil {
		// The fetch succeeded; a persistence failure costs the next
		// call a re-sync, not the user their data.
		s.log.WithError(err).Warn("persisting cache failed")
	}

	s.log.WithFields(logrus.Fields{
		"fetched": len(fresh),
		"total":   len(merged),
	}).Debug("sync complete")

	return &FetchResult{
		Activities: merged,
		SyncedAt:   now,
	}, nil
}

// dedupe drops later duplicates by activity ID, keeping the first
// occurrence. Callers put fresh activities first so the fresh copy wins.
func dedupe(activities []strava.Activity) []strava.Activity {
	seen := make(map[int64]bool, len(activities))
	out := activities[:0:0]
	for _, a := range activities {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

// CacheInfo reports the current sync metadata and whether the cache is
// within the staleness window.
func (s *Store) CacheInfo() (SyncMeta, bool) {
	_, meta := s.db.LoadCache()
	if meta.LastSync == 0 {
		return meta, false
	}
	age := s.clock.Now().Sub(meta.LastSyncTime())
	return meta, age >= 0 && age < s.cfg.StaleWindow()
}

// Clear drops the cached activities; the next call syncs from scratch
func (s *Store) Clear() error {
	if err := s.db.ClearCache(); err != nil {
		return fmt.Errorf("clearing activity cache: %w", err)
	}
	return nil
}
