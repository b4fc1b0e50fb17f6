// Package service implements the download scheduler
package service

import (
	"context"
	"sync"
	"time"

	"recordsync/internal/platform/alert"
	"recordsync/internal/platform/logger"
	"recordsync/internal/services/download/domain"
	jobs "recordsync/internal/services/jobs/domain"

	"github.com/google/uuid"
)

// Config controls cadence and parallelism
type Config struct {
	Period      time.Duration
	Delay       time.Duration
	Concurrency int
	LeaseTTL    time.Duration
}

// Svc implements domain.Scheduler
type Svc struct {
	store jobs.JobStore
	fetch domain.Fetcher
	cfg   Config
	owner string
	log   logger.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	mu       sync.Mutex
	inflight map[int64]struct{}
}

var _ domain.Scheduler = (*Svc)(nil)

// New constructs the scheduler
func New(store jobs.JobStore, fetch domain.Fetcher, cfg Config) *Svc {
	if store == nil || fetch == nil {
		panic("download.Service requires a store and a fetcher")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Minute
	}
	return &Svc{
		store:    store,
		fetch:    fetch,
		cfg:      cfg,
		owner:    "download-" + uuid.NewString(),
		log:      *logger.Named("download"),
		sem:      make(chan struct{}, cfg.Concurrency),
		inflight: map[int64]struct{}{},
	}
}

// Run waits the initial delay then ticks every period until ctx is done
func (s *Svc) Run(ctx context.Context) error {
	defer s.Wait()
	if s.cfg.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.Delay):
		}
	}

	t := time.NewTicker(s.cfg.Period)
	defer t.Stop()
	for {
		if err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("download tick failed")
			alert.Capture(ctx, err, map[string]string{"component": "download"})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Tick lists ready jobs and hands each claimable one to a worker slot
func (s *Svc) Tick(ctx context.Context) error {
	ready, err := s.store.LoadReady(ctx)
	if err != nil {
		return err
	}
	for _, j := range ready {
		if !s.enter(j.ID) {
			continue
		}
		ok, err := s.store.Claim(ctx, j.ID, s.owner, s.cfg.LeaseTTL)
		if err != nil {
			s.leave(j.ID)
			return err
		}
		if !ok {
			s.leave(j.ID)
			s.log.Debug().Int64("job_id", j.ID).Msg("lease held elsewhere, skipping")
			continue
		}

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			s.release(j.ID)
			return ctx.Err()
		}
		s.wg.Add(1)
		go func(j jobs.Job) {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			s.process(ctx, j)
		}(j)
	}
	return nil
}

// Wait blocks until dispatched work is done
func (s *Svc) Wait() { s.wg.Wait() }

func (s *Svc) process(ctx context.Context, j jobs.Job) {
	defer s.release(j.ID)
	ctx = logger.WithJob(ctx, j.ID)

	log := s.log.With().Int64("job_id", j.ID).Str("path", j.Data.Meta.LocalFilePath).Logger()
	log.Info().Msg("download started")
	started := time.Now()

	n, err := s.fetch.Download(ctx, j.Data.DownloadURL, j.Data.DownloadToken, j.Data.Meta.LocalFilePath)
	if err != nil && ctx.Err() != nil {
		// shutdown, the job stays ready for the next process
		log.Warn().Err(err).Msg("download interrupted")
		return
	}

	if err != nil {
		j.LoadSourceState = jobs.LoadFailed
		j.LoadSourceError = err.Error()
		log.Error().Err(err).Msg("download failed")
		alert.Capture(ctx, err, map[string]string{"component": "download"})
	} else {
		j.LoadSourceState = jobs.LoadSuccess
		j.LoadSourceError = ""
		log.Info().Int64("bytes", n).Dur("took", time.Since(started)).Msg("download finished")
	}

	if err := s.store.SaveLoad(context.WithoutCancel(ctx), j); err != nil {
		log.Error().Err(err).Msg("persist download outcome failed")
	}
}

func (s *Svc) enter(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Svc) leave(id int64) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

// release drops the lease and the in-flight marker
func (s *Svc) release(id int64) {
	if err := s.store.Release(context.Background(), id, s.owner); err != nil {
		s.log.Warn().Err(err).Int64("job_id", id).Msg("release lease failed")
	}
	s.leave(id)
}
