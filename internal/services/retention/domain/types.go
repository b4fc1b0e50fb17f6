// Package domain declares the retention sweep port
package domain

import "context"

// Sweeper removes local sources of published jobs once they age past the window
type Sweeper interface {
	Run(ctx context.Context) error
	// Sweep runs one pass and reports how many sources were removed
	Sweep(ctx context.Context) (int, error)
}
