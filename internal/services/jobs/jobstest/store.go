// Package jobstest provides an in-memory job store for service tests
package jobstest

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	perr "recordsync/internal/platform/errors"
	"recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/jobs/repo"
)

type lease struct {
	owner   string
	expires time.Time
}

// Store is a concurrency safe in-memory repo.Repo
// Fail maps a method name to the error it returns instead of running
type Store struct {
	mu sync.Mutex

	Now  func() time.Time
	Fail map[string]error

	events    []domain.Event
	jobs      []domain.Job
	leases    map[int64]lease
	settings  map[string]json.RawMessage
	playlists map[string]string

	// Writes counts successful mutations per method
	Writes map[string]int
}

var _ repo.Repo = (*Store)(nil)

// New returns an empty store
func New() *Store {
	return &Store{
		Now:       time.Now,
		Fail:      map[string]error{},
		leases:    map[int64]lease{},
		settings:  map[string]json.RawMessage{},
		playlists: map[string]string{},
		Writes:    map[string]int{},
	}
}

func (s *Store) fail(method string) error { return s.Fail[method] }

func (s *Store) wrote(method string) { s.Writes[method]++ }

// TotalWrites sums all mutation counters
func (s *Store) TotalWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.Writes {
		n += v
	}
	return n
}

// SetFail installs or clears a failure for method
func (s *Store) SetFail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.Fail, method)
		return
	}
	s.Fail[method] = err
}

// Events returns a copy of all events
func (s *Store) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Jobs returns a copy of all jobs
func (s *Store) Jobs() []domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.jobs)
}

// Job returns a job by id
func (s *Store) Job(id int64) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.Job{}, false
}

// AddJob seeds a job as if it had been inserted; zero ids and times are filled
func (s *Store) AddJob(j domain.Job) domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == 0 {
		j.ID = int64(len(s.jobs) + 1)
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.Now()
	}
	if j.LoadSourceState == "" {
		j.LoadSourceState = domain.LoadReady
	}
	if j.PublishState == "" {
		j.PublishState = domain.PublishReady
	}
	j.UpdatedAt = j.CreatedAt
	s.jobs = append(s.jobs, j)
	return j
}

// AddEvent seeds an event
func (s *Store) AddEvent(e domain.Event) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = int64(len(s.events) + 1)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.Now()
	}
	e.UpdatedAt = e.CreatedAt
	s.events = append(s.events, e)
	return e
}

// Lease reports who holds the lease on id
func (s *Store) Lease(id int64) (owner string, expires time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leases[id]
	return l.owner, l.expires, ok
}

// InsertEvent implements domain.EventStore
func (s *Store) InsertEvent(_ context.Context, state domain.EventState, reason string, data json.RawMessage) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertEvent"); err != nil {
		return domain.Event{}, err
	}
	now := s.Now()
	e := domain.Event{
		ID: int64(len(s.events) + 1), State: state, Reason: reason,
		Data: slices.Clone(data), CreatedAt: now, UpdatedAt: now,
	}
	s.events = append(s.events, e)
	s.wrote("InsertEvent")
	return e, nil
}

// MarkEventProcessed implements domain.EventStore
func (s *Store) MarkEventProcessed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkEventProcessed"); err != nil {
		return err
	}
	for i := range s.events {
		if s.events[i].ID == id && s.events[i].State == domain.EventReady {
			s.events[i].State = domain.EventProcessed
			s.events[i].UpdatedAt = s.Now()
			s.wrote("MarkEventProcessed")
			return nil
		}
	}
	return perr.NotFoundf("event %d is not ready", id)
}

// EventsBetween implements domain.EventStore
func (s *Store) EventsBetween(_ context.Context, from, to time.Time) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("EventsBetween"); err != nil {
		return nil, err
	}
	var out []domain.Event
	for _, e := range s.events {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// InsertJob implements domain.JobStore
func (s *Store) InsertJob(_ context.Context, eventID int64, data domain.JobData) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertJob"); err != nil {
		return domain.Job{}, err
	}
	now := s.Now()
	j := domain.Job{
		ID: int64(len(s.jobs) + 1), EventID: eventID,
		LoadSourceState: domain.LoadReady, PublishState: domain.PublishReady,
		Data: data, CreatedAt: now, UpdatedAt: now,
	}
	s.jobs = append(s.jobs, j)
	s.wrote("InsertJob")
	return j, nil
}

func (s *Store) filter(method string, keep func(domain.Job) bool) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(method); err != nil {
		return nil, err
	}
	var out []domain.Job
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Job) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// LoadReady implements domain.JobStore
func (s *Store) LoadReady(context.Context) ([]domain.Job, error) {
	return s.filter("LoadReady", func(j domain.Job) bool { return j.LoadSourceState == domain.LoadReady })
}

// PublishReady implements domain.JobStore
func (s *Store) PublishReady(context.Context) ([]domain.Job, error) {
	return s.filter("PublishReady", func(j domain.Job) bool {
		return j.LoadSourceState == domain.LoadSuccess && j.PublishState == domain.PublishReady
	})
}

// ForRetention implements domain.JobStore
func (s *Store) ForRetention(_ context.Context, cutoff time.Time) ([]domain.Job, error) {
	return s.filter("ForRetention", func(j domain.Job) bool {
		return j.PublishState == domain.PublishSuccess && !j.IsSourceRemoved && !j.CreatedAt.After(cutoff)
	})
}

// JobsByEventIDs implements domain.JobStore
func (s *Store) JobsByEventIDs(_ context.Context, ids []int64) ([]domain.Job, error) {
	return s.filter("JobsByEventIDs", func(j domain.Job) bool { return slices.Contains(ids, j.EventID) })
}

func (s *Store) update(method string, id int64, fn func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(method); err != nil {
		return err
	}
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			fn(&s.jobs[i])
			s.jobs[i].UpdatedAt = s.Now()
			s.wrote(method)
			return nil
		}
	}
	return perr.ErrNotFound
}

// SaveLoad implements domain.JobStore
func (s *Store) SaveLoad(_ context.Context, j domain.Job) error {
	return s.update("SaveLoad", j.ID, func(dst *domain.Job) {
		dst.LoadSourceState = j.LoadSourceState
		dst.LoadSourceError = j.LoadSourceError
	})
}

// SavePublish implements domain.JobStore
func (s *Store) SavePublish(_ context.Context, j domain.Job) error {
	return s.update("SavePublish", j.ID, func(dst *domain.Job) {
		dst.PublishState = j.PublishState
		dst.LastPublishAction = j.LastPublishAction
		dst.PublishError = j.PublishError
		dst.Data = j.Data
	})
}

// MarkSourceRemoved implements domain.JobStore
func (s *Store) MarkSourceRemoved(_ context.Context, id int64) error {
	return s.update("MarkSourceRemoved", id, func(dst *domain.Job) { dst.IsSourceRemoved = true })
}

// Claim implements domain.JobStore
func (s *Store) Claim(_ context.Context, id int64, owner string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Claim"); err != nil {
		return false, err
	}
	now := s.Now()
	if l, ok := s.leases[id]; ok && l.owner != owner && !l.expires.Before(now) {
		return false, nil
	}
	s.leases[id] = lease{owner: owner, expires: now.Add(ttl)}
	return true, nil
}

// Release implements domain.JobStore
func (s *Store) Release(_ context.Context, id int64, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Release"); err != nil {
		return err
	}
	if l, ok := s.leases[id]; ok && l.owner == owner {
		delete(s.leases, id)
	}
	return nil
}

// ReclaimStale implements domain.JobStore
func (s *Store) ReclaimStale(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReclaimStale"); err != nil {
		return 0, err
	}
	now := s.Now()
	var n int64
	for i := range s.jobs {
		j := &s.jobs[i]
		if j.PublishState != domain.PublishProcessing && j.PublishState != domain.PublishUnfinally {
			continue
		}
		l, ok := s.leases[j.ID]
		if !ok || !l.expires.Before(now) {
			continue
		}
		j.PublishState = domain.PublishReady
		j.UpdatedAt = now
		delete(s.leases, j.ID)
		n++
	}
	if n > 0 {
		s.wrote("ReclaimStale")
	}
	return n, nil
}

// GetSetting implements domain.SettingsStore
func (s *Store) GetSetting(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetSetting"); err != nil {
		return nil, err
	}
	v, ok := s.settings[key]
	if !ok {
		return nil, perr.ErrNotFound
	}
	return slices.Clone(v), nil
}

// PutSetting implements domain.SettingsStore
func (s *Store) PutSetting(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("PutSetting"); err != nil {
		return err
	}
	s.settings[key] = slices.Clone(value)
	s.wrote("PutSetting")
	return nil
}

// Playlists implements domain.PlaylistStore
func (s *Store) Playlists(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Playlists"); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(s.playlists))
	for k, v := range s.playlists {
		out[k] = v
	}
	return out, nil
}

// UpsertPlaylist implements domain.PlaylistStore
func (s *Store) UpsertPlaylist(_ context.Context, title, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertPlaylist"); err != nil {
		return err
	}
	s.playlists[title] = remoteID
	s.wrote("UpsertPlaylist")
	return nil
}
