package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"paceboard/internal/strava"
)

const (
	cacheKeyActivities = "activities"
	cacheKeySyncMeta   = "syncMeta"
)

// LoadCache reads the cached activity list and its sync metadata. A
// missing or unreadable record collapses to the empty cache: the next
// sync rebuilds it, so corruption is never fatal here.
func (db *DB) LoadCache() ([]strava.Activity, SyncMeta) {
	activities, err := db.tryLoadActivities()
	if err != nil {
		activities = nil
	}

	meta, err := db.tryLoadSyncMeta()
	if err != nil {
		meta = SyncMeta{}
	}

	// The two records are written together; if one is gone, trust neither.
	if activities == nil {
		meta = SyncMeta{}
	}

	return activities, meta
}

func (db *DB) tryLoadActivities() ([]strava.Activity, error) {
	raw, err := db.getCacheValue(cacheKeyActivities)
	if err != nil {
		return nil, err
	}

	var activities []strava.Activity
	if err := json.Unmarshal([]byte(raw), &activities); err != nil {
		return nil, fmt.Errorf("parsing cached activities: %w", err)
	}
	if activities == nil {
		activities = []strava.Activity{}
	}
	return activities, nil
}

func (db *DB) tryLoadSyncMeta() (SyncMeta, error) {
	raw, err := db.getCacheValue(cacheKeySyncMeta)
	if err != nil {
		return SyncMeta{}, err
	}

	var meta SyncMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return SyncMeta{}, fmt.Errorf("parsing sync metadata: %w", err)
	}
	return meta, nil
}

func (db *DB) getCacheValue(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no cache record %q", key)
	}
	if err != nil {
		return "", fmt.Errorf("reading cache record %q: %w", key, err)
	}
	return value, nil
}

// SaveCache writes the activity list and its metadata in one
// transaction, so a reader never sees one without the other.
func (db *DB) SaveCache(activities []strava.Activity, meta SyncMeta) error {
	if activities == nil {
		activities = []strava.Activity{}
	}

	activitiesJSON, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("encoding activities: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding sync metadata: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	upsert := `INSERT INTO cache (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := tx.Exec(upsert, cacheKeyActivities, string(activitiesJSON)); err != nil {
		return fmt.Errorf("saving activities: %w", err)
	}
	if _, err := tx.Exec(upsert, cacheKeySyncMeta, string(metaJSON)); err != nil {
		return fmt.Errorf("saving sync metadata: %w", err)
	}

	return tx.Commit()
}

// ClearCache drops both cache records. The next Activities call performs
// a full-history sync.
func (db *DB) ClearCache() error {
	if _, err := db.Exec(`DELETE FROM cache`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
