package store

import (
	"time"

	"paceboard/internal/strava"
)

// SyncMeta describes the state of the persisted activity cache. It is
// stored as the "syncMeta" cache record.
type SyncMeta struct {
	// LastSync is the wall-clock time of the last successful sync in
	// milliseconds since the Unix epoch. Zero means never synced.
	LastSync int64 `json:"lastSync"`

	// Count is the number of cached activities.
	Count int `json:"count"`

	// LatestDate is the local start time of the most recent cached
	// activity in RFC 3339, or nil when the cache is empty.
	LatestDate *string `json:"latestDate"`
}

// LastSyncTime converts the millisecond timestamp back to a time.Time
func (m SyncMeta) LastSyncTime() time.Time {
	if m.LastSync == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.LastSync)
}

// Auth holds the persisted Strava credentials
type Auth struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// FetchResult is what Activities hands back: the full activity list plus
// where it came from.
type FetchResult struct {
	Activities []strava.Activity

	// FromCache is true when no network call was made, or when one was
	// attempted and the cached copy was served instead.
	FromCache bool

	// SyncedAt is the time of the last successful sync, zero if never
	SyncedAt time.Time

	// SyncErr is set when a sync was attempted and failed recoverably;
	// Activities then still holds the previous cached list.
	SyncErr error
}
