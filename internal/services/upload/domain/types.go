// Package domain defines the upload scheduler ports
package domain

import (
	"context"

	publisher "recordsync/internal/services/publisher/domain"
)

// Error texts recorded on jobs
const (
	ErrFileNotExists  = "File not exists"
	ErrNotEnoughQuota = "Not enough quota for this video"
)

// PublisherSource hands out the current publishing capability
type PublisherSource interface {
	Publisher() publisher.Publisher
}

// Scheduler publishes downloaded jobs one at a time
type Scheduler interface {
	// Run ticks until ctx is done
	Run(ctx context.Context) error
	// Tick runs one serialized pass over the publish candidates
	Tick(ctx context.Context) error
}
