// Package domain defines the download scheduler ports
package domain

import "context"

// Fetcher writes the media at url to dst and returns the bytes written
type Fetcher interface {
	Download(ctx context.Context, url, token, dst string) (int64, error)
}

// Scheduler moves ready jobs to a downloaded or failed source state
type Scheduler interface {
	// Run ticks until ctx is done
	Run(ctx context.Context) error
	// Tick dispatches every claimable ready job and returns without waiting for them
	Tick(ctx context.Context) error
	// Wait blocks until dispatched downloads finish
	Wait()
}
