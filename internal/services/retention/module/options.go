package module

import (
	"time"

	"recordsync/internal/platform/config"
)

// Options controls the retention sweep
type Options struct {
	Period time.Duration
	Window time.Duration
}

// FromConfig reads RETENTION_ keys
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("RETENTION_")
	return Options{
		Period: r.MayDuration("PERIOD", time.Hour),
		Window: r.MayDuration("WINDOW", 7*24*time.Hour),
	}
}
