// Package service implements the retention sweep
package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"recordsync/internal/platform/alert"
	"recordsync/internal/platform/logger"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/retention/domain"
)

// Config controls cadence and the window
type Config struct {
	Period time.Duration
	Window time.Duration
}

// Svc implements domain.Sweeper
type Svc struct {
	store  jobs.JobStore
	cfg    Config
	log    logger.Logger
	now    func() time.Time
	remove func(path string) error
}

var _ domain.Sweeper = (*Svc)(nil)

// New constructs the sweeper
func New(store jobs.JobStore, cfg Config) *Svc {
	if store == nil {
		panic("retention.Service requires a job store")
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Hour
	}
	if cfg.Window <= 0 {
		cfg.Window = 7 * 24 * time.Hour
	}
	return &Svc{
		store:  store,
		cfg:    cfg,
		log:    *logger.Named("retention"),
		now:    time.Now,
		remove: os.Remove,
	}
}

// Run sweeps immediately then every period until ctx is done
func (s *Svc) Run(ctx context.Context) error {
	t := time.NewTicker(s.cfg.Period)
	defer t.Stop()
	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("retention sweep failed")
			alert.Capture(ctx, err, map[string]string{"component": "retention"})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Sweep removes every eligible file; per job failures are logged and retried next pass
func (s *Svc) Sweep(ctx context.Context) (int, error) {
	due, err := s.store.ForRetention(ctx, s.now().Add(-s.cfg.Window))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, j := range due {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		path := j.Data.Meta.LocalFilePath
		log := s.log.With().Int64("job_id", j.ID).Str("path", path).Logger()

		if path != "" {
			if err := s.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Error().Err(err).Msg("remove source failed")
				continue
			}
		}
		if err := s.store.MarkSourceRemoved(ctx, j.ID); err != nil {
			log.Error().Err(err).Msg("mark source removed failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Int("due", len(due)).Msg("retention sweep done")
	}
	return removed, nil
}
