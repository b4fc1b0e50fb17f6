package module

import (
	"time"

	"recordsync/internal/platform/config"
)

// Options controls the download scheduler, read from env
type Options struct {
	Period      time.Duration
	Delay       time.Duration
	Concurrency int
	LeaseTTL    time.Duration

	// transport knobs
	RPS        float64
	Burst      int
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// FromConfig reads DOWNLOAD_ keys plus the shared CRON_DELAY and LEASE_TTL
func FromConfig(cfg config.Conf) Options {
	d := cfg.Prefix("DOWNLOAD_")
	return Options{
		Period:      d.MayDuration("PERIOD", cfg.MayDuration("CRON_PERIOD", time.Minute)),
		Delay:       cfg.MayDuration("CRON_DELAY", 10*time.Second),
		Concurrency: d.MayInt("CONCURRENCY", 2),
		LeaseTTL:    cfg.MayDuration("LEASE_TTL", 30*time.Minute),
		RPS:         d.MayFloat64("RPS", 1),
		Burst:       d.MayInt("BURST", 1),
		Timeout:     d.MayDuration("TIMEOUT", 2*time.Hour),
		MaxRetries:  d.MayInt("MAX_RETRIES", 3),
		RetryBase:   d.MayDuration("RETRY_BASE", time.Second),
	}
}
