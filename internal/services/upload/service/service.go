// Package service implements the upload scheduler
package service

import (
	"context"
	"os"
	"sync"
	"time"

	"recordsync/internal/platform/alert"
	"recordsync/internal/platform/logger"
	jobs "recordsync/internal/services/jobs/domain"
	publisher "recordsync/internal/services/publisher/domain"
	quota "recordsync/internal/services/quota/domain"
	"recordsync/internal/services/upload/domain"

	"github.com/google/uuid"
)

// Config controls cadence and the lease
type Config struct {
	Period   time.Duration
	Delay    time.Duration
	LeaseTTL time.Duration
}

// Svc implements domain.Scheduler
type Svc struct {
	store jobs.JobStore
	pubs  domain.PublisherSource
	gov   quota.Governor
	cfg   Config
	owner string
	log   logger.Logger

	exists func(path string) bool

	mu       sync.Mutex
	inflight map[int64]struct{}
	// unsaved holds the last state a job reached but could not persist
	unsaved map[int64]jobs.Job
}

var _ domain.Scheduler = (*Svc)(nil)

// New constructs the scheduler
func New(store jobs.JobStore, pubs domain.PublisherSource, gov quota.Governor, cfg Config) *Svc {
	if store == nil || pubs == nil || gov == nil {
		panic("upload.Service requires a store, a publisher source and a governor")
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Minute
	}
	return &Svc{
		store:    store,
		pubs:     pubs,
		gov:      gov,
		cfg:      cfg,
		owner:    "upload-" + uuid.NewString(),
		log:      *logger.Named("upload"),
		exists:   fileExists,
		inflight: map[int64]struct{}{},
		unsaved:  map[int64]jobs.Job{},
	}
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// Run waits the initial delay then ticks every period until ctx is done
func (s *Svc) Run(ctx context.Context) error {
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
			s.log.Error().Err(err).Msg("upload tick failed")
			alert.Capture(ctx, err, map[string]string{"component": "upload"})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Tick reclaims stale jobs then publishes candidates in order until quota or candidates run out
func (s *Svc) Tick(ctx context.Context) error {
	if n, err := s.store.ReclaimStale(ctx); err != nil {
		return err
	} else if n > 0 {
		s.log.Warn().Int64("jobs", n).Msg("reclaimed jobs with expired leases")
	}

	pub := s.pubs.Publisher()
	if !pub.Available() {
		s.log.Debug().Msg("no credential, upload tick skipped")
		return nil
	}

	ready, err := s.store.PublishReady(ctx)
	if err != nil {
		return err
	}
	candidates := ready[:0]
	for _, j := range ready {
		if !s.busy(j.ID) {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ok, err := pub.HasQuotaForPreflight(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Info().Int("candidates", len(candidates)).Msg("quota exhausted, upload tick skipped")
		return nil
	}
	if err := pub.EnsurePlaylistCacheWarm(ctx); err != nil {
		if publisher.IsQuotaExhausted(err) {
			s.exhaust(ctx, err)
			return nil
		}
		return err
	}

	for _, j := range candidates {
		stop, err := s.publishOne(ctx, pub, j)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// publishOne runs the steps for one job; stop ends the tick without error
func (s *Svc) publishOne(ctx context.Context, pub publisher.Publisher, j jobs.Job) (stop bool, err error) {
	if !s.enter(j.ID) {
		return false, nil
	}
	defer s.leave(j.ID)
	ctx = logger.WithJob(ctx, j.ID)

	claimed, err := s.store.Claim(ctx, j.ID, s.owner, s.cfg.LeaseTTL)
	if err != nil {
		return false, err
	}
	if !claimed {
		s.log.Debug().Int64("job_id", j.ID).Msg("lease held elsewhere, skipping")
		return false, nil
	}
	// a failed save keeps the lease, so the row stays reclaimable and nobody else redoes the upload
	keepLease := false
	defer func() {
		if keepLease {
			return
		}
		if rerr := s.store.Release(context.WithoutCancel(ctx), j.ID, s.owner); rerr != nil {
			s.log.Warn().Err(rerr).Int64("job_id", j.ID).Msg("release lease failed")
		}
	}()
	persist := func(j jobs.Job) error {
		if err := s.save(ctx, j); err != nil {
			keepLease = true
			s.remember(j)
			return err
		}
		s.forget(j.ID)
		return nil
	}

	if pending, ok := s.recall(j.ID); ok {
		if err := persist(pending); err != nil {
			return false, err
		}
		s.log.Info().Int64("job_id", j.ID).Str("state", string(pending.PublishState)).Msg("persisted unsaved state")
		if pending.PublishState == jobs.PublishSuccess || pending.PublishState == jobs.PublishFailed {
			return false, nil
		}
		j = pending
	}

	log := s.log.With().Int64("job_id", j.ID).Str("playlist", j.Data.Meta.PlaylistTitle).Logger()
	meta := &j.Data.Meta

	if j.Resumable() {
		log.Info().Str("video_id", meta.RemoteVideoID).Msg("resuming at playlist step")
		ok, err := pub.HasQuotaForPlaylistStep(ctx, meta.PlaylistTitle)
		if err != nil {
			return false, err
		}
		if !ok {
			j.PublishState = jobs.PublishReady
			j.PublishError = domain.ErrNotEnoughQuota
			return true, persist(j)
		}
		j.PublishState = jobs.PublishProcessing
		if err := persist(j); err != nil {
			return false, err
		}
	} else {
		if !s.exists(meta.LocalFilePath) {
			j.PublishState = jobs.PublishFailed
			j.PublishError = domain.ErrFileNotExists
			log.Warn().Str("path", meta.LocalFilePath).Msg("source file missing")
			return false, persist(j)
		}

		ok, err := pub.HasQuotaForVideo(ctx, meta.PlaylistTitle)
		if err != nil {
			return false, err
		}
		if !ok {
			j.PublishState = jobs.PublishReady
			j.PublishError = domain.ErrNotEnoughQuota
			log.Info().Msg("not enough quota for video, tick stopped")
			return true, persist(j)
		}

		j.LastPublishAction = jobs.ActionUpload
		id, err := pub.UploadVideo(ctx, publisher.UploadInput{
			Title:         meta.Title,
			Description:   meta.Description,
			LocalFilePath: meta.LocalFilePath,
		})
		switch {
		case err != nil && ctx.Err() != nil:
			log.Warn().Err(err).Msg("upload interrupted by shutdown")
			return true, nil
		case publisher.IsQuotaExhausted(err):
			return true, s.revert(ctx, j, err, persist)
		case err != nil:
			j.PublishState = jobs.PublishFailed
			j.PublishError = err.Error()
			log.Error().Err(err).Msg("upload failed")
			s.report(ctx, err)
			return false, persist(j)
		}

		j.PublishState = jobs.PublishProcessing
		j.LastPublishAction = jobs.ActionPlaylist
		meta.RemoteVideoID = id
		meta.RemoteURL = pub.RemoteURL(id)
		log.Info().Str("video_id", id).Msg("video uploaded")
		if err := persist(j); err != nil {
			// remembered, the next claim resumes at the playlist step
			return false, err
		}
	}

	err = pub.InsertToPlaylist(ctx, meta.RemoteVideoID, meta.PlaylistTitle)
	switch {
	case err != nil && ctx.Err() != nil:
		log.Warn().Err(err).Msg("playlist insert interrupted by shutdown")
		keepLease = true
		return true, nil
	case publisher.IsQuotaExhausted(err):
		return true, s.revert(ctx, j, err, persist)
	case err != nil:
		j.PublishError = err.Error()
		log.Error().Err(err).Msg("playlist insert failed")
		s.report(ctx, err)
		if serr := persist(j); serr != nil {
			log.Error().Err(serr).Msg("persist playlist failure failed")
		}
		keepLease = true
		return false, err
	}

	j.PublishState = jobs.PublishSuccess
	j.PublishError = ""
	log.Info().Str("url", meta.RemoteURL).Msg("published")
	return false, persist(j)
}

// revert reconciles the governor with the remote and hands the job back to the next tick
func (s *Svc) revert(ctx context.Context, j jobs.Job, cause error, persist func(jobs.Job) error) error {
	s.exhaust(ctx, cause)
	j.PublishError = cause.Error()
	j.PublishState = jobs.PublishUnfinally
	if err := persist(j); err != nil {
		return err
	}
	j.PublishState = jobs.PublishReady
	return persist(j)
}

func (s *Svc) exhaust(ctx context.Context, cause error) {
	s.log.Warn().Err(cause).Msg("remote quota exhausted, budget forced to zero")
	if err := s.gov.ForceExhaust(ctx); err != nil {
		s.log.Error().Err(err).Msg("force exhaust failed")
	}
}

func (s *Svc) save(ctx context.Context, j jobs.Job) error {
	return s.store.SavePublish(context.WithoutCancel(ctx), j)
}

func (s *Svc) report(ctx context.Context, err error) {
	alert.Capture(ctx, err, map[string]string{"component": "upload"})
}

func (s *Svc) remember(j jobs.Job) {
	s.mu.Lock()
	s.unsaved[j.ID] = j
	s.mu.Unlock()
}

func (s *Svc) recall(id int64) (jobs.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.unsaved[id]
	return j, ok
}

func (s *Svc) forget(id int64) {
	s.mu.Lock()
	delete(s.unsaved, id)
	s.mu.Unlock()
}

func (s *Svc) busy(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[id]
	return ok
}

func (s *Svc) enter(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[id]; ok {
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
