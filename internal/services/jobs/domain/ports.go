package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventStore persists webhook events
type EventStore interface {
	InsertEvent(ctx context.Context, state EventState, reason string, data json.RawMessage) (Event, error)
	// MarkEventProcessed flips ready to processed and never touches other states
	MarkEventProcessed(ctx context.Context, id int64) error
	// EventsBetween returns events with from <= created_at < to, oldest first
	EventsBetween(ctx context.Context, from, to time.Time) ([]Event, error)
}

// JobStore persists jobs and their lease
type JobStore interface {
	InsertJob(ctx context.Context, eventID int64, data JobData) (Job, error)

	// LoadReady lists jobs waiting for download, oldest first
	LoadReady(ctx context.Context) ([]Job, error)
	// PublishReady lists downloaded jobs waiting for publish, oldest first
	PublishReady(ctx context.Context) ([]Job, error)
	// ForRetention lists published jobs created at or before cutoff whose source is still on disk
	ForRetention(ctx context.Context, cutoff time.Time) ([]Job, error)
	JobsByEventIDs(ctx context.Context, ids []int64) ([]Job, error)

	SaveLoad(ctx context.Context, j Job) error
	SavePublish(ctx context.Context, j Job) error
	MarkSourceRemoved(ctx context.Context, id int64) error

	// Claim takes the lease on id for owner, false when another live lease holds it
	Claim(ctx context.Context, id int64, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id int64, owner string) error
	// ReclaimStale resets processing and unfinally jobs with expired leases to ready
	ReclaimStale(ctx context.Context) (int64, error)
}

// SettingsStore holds singleton json blobs keyed by name
type SettingsStore interface {
	// GetSetting returns perr.ErrNotFound when key was never written
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)
	PutSetting(ctx context.Context, key string, value json.RawMessage) error
}

// PlaylistStore persists the playlist title to remote id cache
type PlaylistStore interface {
	Playlists(ctx context.Context) (map[string]string, error)
	UpsertPlaylist(ctx context.Context, title, remoteID string) error
}
