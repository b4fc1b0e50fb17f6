// Package domain defines the quota governor types and ports
package domain

import "context"

// Op is a costed category of remote API call
type Op string

// Operation categories
const (
	OpList            Op = "list"
	OpPlaylistCreate  Op = "playlist-create"
	OpPlaylistAddItem Op = "playlist-add-item"
	OpVideoUpload     Op = "video-upload"
)

// Costs maps an operation to its point cost
type Costs map[Op]int

// State is the persisted counter
type State struct {
	LastResetDay    string `json:"lastResetDay"`
	RemainingPoints int    `json:"remainingPoints"`
}

// Governor tracks the daily point budget
type Governor interface {
	// Check reports whether the summed cost of ops fits in the remaining budget
	// a calendar day change resets and persists the counter first
	Check(ctx context.Context, ops ...Op) (bool, error)
	// Pay deducts op when affordable and reports whether it did
	Pay(ctx context.Context, op Op) (bool, error)
	// ForceExhaust zeroes the budget after the provider refused a call
	ForceExhaust(ctx context.Context) error
	Remaining(ctx context.Context) (int, error)
}
