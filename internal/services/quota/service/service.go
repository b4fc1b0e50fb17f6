// Package service implements the persisted daily quota governor
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"
	ptime "recordsync/internal/platform/time"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/quota/domain"
)

// Svc implements domain.Governor over the quota settings row
type Svc struct {
	store jobs.SettingsStore
	cfg   Config
	log   logger.Logger
	now   func() time.Time

	mu     sync.Mutex
	loaded bool
	state  domain.State
}

var _ domain.Governor = (*Svc)(nil)

// New constructs a governor; state is loaded lazily on first use
func New(store jobs.SettingsStore, cfg Config) *Svc {
	if store == nil {
		panic("quota.Service requires a non nil settings store")
	}
	if cfg.Costs == nil {
		cfg.Costs = DefaultCosts()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Svc{
		store: store,
		cfg:   cfg,
		log:   *logger.Named("quota"),
		now:   time.Now,
	}
}

// Check sums the costs of ops against the remaining budget
func (s *Svc) Check(ctx context.Context, ops ...domain.Op) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cost, err := s.cost(ops...)
	if err != nil {
		return false, err
	}
	if err := s.refresh(ctx); err != nil {
		return false, err
	}
	return s.state.RemainingPoints >= cost, nil
}

// Pay deducts op when affordable; an unaffordable op leaves state untouched
func (s *Svc) Pay(ctx context.Context, op domain.Op) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cost, err := s.cost(op)
	if err != nil {
		return false, err
	}
	if err := s.refresh(ctx); err != nil {
		return false, err
	}
	if s.state.RemainingPoints < cost {
		return false, nil
	}
	next := s.state
	next.RemainingPoints -= cost
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.log.Debug().Str("op", string(op)).Int("cost", cost).Int("remaining", next.RemainingPoints).Msg("quota paid")
	return true, nil
}

// ForceExhaust zeroes the remaining budget for the current day
func (s *Svc) ForceExhaust(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	next := s.state
	next.RemainingPoints = 0
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.log.Warn().Str("day", next.LastResetDay).Msg("quota force exhausted")
	return nil
}

// Remaining returns the current budget after any day rollover
func (s *Svc) Remaining(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return 0, err
	}
	return s.state.RemainingPoints, nil
}

func (s *Svc) cost(ops ...domain.Op) (int, error) {
	total := 0
	for _, op := range ops {
		c, ok := s.cfg.Costs[op]
		if !ok {
			return 0, perr.InvalidArgf("quota: unknown operation %q", op)
		}
		total += c
	}
	return total, nil
}

// refresh loads state on first use and resets it on a day change; callers hold mu
func (s *Svc) refresh(ctx context.Context) error {
	if !s.loaded {
		st, err := s.load(ctx)
		if err != nil {
			return err
		}
		s.state = st
		s.loaded = true
	}
	today := ptime.Day(s.now(), s.cfg.Location)
	if s.state.LastResetDay == today {
		return nil
	}
	next := domain.State{LastResetDay: today, RemainingPoints: s.cfg.Budget}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.log.Info().Str("day", today).Int("budget", s.cfg.Budget).Msg("quota reset")
	return nil
}

func (s *Svc) load(ctx context.Context) (domain.State, error) {
	raw, err := s.store.GetSetting(ctx, jobs.SettingQuota)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.State{}, nil
	}
	if err != nil {
		return domain.State{}, err
	}
	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn().Err(err).Msg("quota row unreadable, starting from a full budget")
		return domain.State{}, nil
	}
	return st, nil
}

// persist writes next and only then adopts it in memory
func (s *Svc) persist(ctx context.Context, next domain.State) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "quota: encode state")
	}
	if err := s.store.PutSetting(ctx, jobs.SettingQuota, raw); err != nil {
		return err
	}
	s.state = next
	return nil
}
