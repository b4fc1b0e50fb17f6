// Package alert reports failures nobody is waiting on (async and scheduler work) to Sentry
// it is a no-op until Init is given a DSN
package alert

import (
	"context"
	"sync/atomic"
	"time"

	"recordsync/internal/platform/config"
	"recordsync/internal/platform/logger"

	"github.com/getsentry/sentry-go"
)

// Config configures the Sentry client
type Config struct {
	DSN         string
	Environment string
	Release     string
}

// FromConfig reads SENTRY_DSN, SENTRY_ENVIRONMENT and SENTRY_RELEASE from the root config
func FromConfig(root config.Conf) Config {
	c := root.Prefix("SENTRY_")
	return Config{
		DSN:         c.MayString("DSN", ""),
		Environment: c.MayString("ENVIRONMENT", "production"),
		Release:     c.MayString("RELEASE", ""),
	}
}

var enabled atomic.Bool

// seams for tests
var (
	sentryInit = sentry.Init
	captureFn  = func(err error, tags map[string]string) {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTags(tags)
			sentry.CaptureException(err)
		})
	}
	flushFn = sentry.Flush
)

// Init enables reporting when cfg carries a DSN
func Init(cfg Config) error {
	if cfg.DSN == "" {
		logger.Named("alert").Info().Msg("sentry dsn not set, alert sink disabled")
		return nil
	}
	if err := sentryInit(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	}); err != nil {
		return err
	}
	enabled.Store(true)
	return nil
}

// Enabled reports whether a sink is configured
func Enabled() bool { return enabled.Load() }

// Capture sends err with tags; the request or job id from ctx is attached when present
func Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil || !enabled.Load() {
		return
	}
	all := make(map[string]string, len(tags)+2)
	for k, v := range tags {
		all[k] = v
	}
	if id := requestID(ctx); id != "" {
		all["request_id"] = id
	}
	if id := jobID(ctx); id != "" {
		all["job_id"] = id
	}
	captureFn(err, all)
}

// Flush waits up to timeout for buffered events
func Flush(timeout time.Duration) {
	if !enabled.Load() {
		return
	}
	if !flushFn(timeout) {
		logger.Named("alert").Warn().Dur("timeout", timeout).Msg("sentry flush timed out")
	}
}
