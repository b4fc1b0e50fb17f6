package module

import (
	"time"

	"recordsync/internal/platform/config"
)

// Options controls the upload scheduler
type Options struct {
	Period   time.Duration
	Delay    time.Duration
	LeaseTTL time.Duration
}

// FromConfig reads UPLOAD_PERIOD plus the shared cron and lease keys
func FromConfig(cfg config.Conf) Options {
	return Options{
		Period:   cfg.Prefix("UPLOAD_").MayDuration("PERIOD", cfg.MayDuration("CRON_PERIOD", time.Minute)),
		Delay:    cfg.MayDuration("CRON_DELAY", 10*time.Second),
		LeaseTTL: cfg.MayDuration("LEASE_TTL", 30*time.Minute),
	}
}
