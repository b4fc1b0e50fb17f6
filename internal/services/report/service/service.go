// Package service builds the recording report from events and their jobs
package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"sort"
	"time"

	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"
	ptime "recordsync/internal/platform/time"
	events "recordsync/internal/services/events/domain"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/report/domain"
)

// defaultSpan is the look back when from is omitted
const defaultSpan = 7 * 24 * time.Hour

// Store is the read side the report needs
type Store interface {
	EventsBetween(ctx context.Context, from, to time.Time) ([]jobs.Event, error)
	JobsByEventIDs(ctx context.Context, ids []int64) ([]jobs.Job, error)
}

// Config holds the route secret and the calendar used for days
type Config struct {
	RouteUUID string
	Location  *time.Location
}

// Svc implements domain.Reporter
type Svc struct {
	store Store
	cfg   Config
	log   logger.Logger
	now   func() time.Time
}

var _ domain.Reporter = (*Svc)(nil)

// New constructs the reporter
func New(store Store, cfg Config) *Svc {
	if store == nil {
		panic("report.Service requires a store")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Svc{store: store, cfg: cfg, log: *logger.Named("report"), now: time.Now}
}

// Authorize compares uuid with the route secret in constant time
func (s *Svc) Authorize(uuid string) error {
	if uuid == "" {
		return perr.WithField(perr.Validationf("UUID is required"), "uuid")
	}
	if subtle.ConstantTimeCompare([]byte(uuid), []byte(s.cfg.RouteUUID)) != 1 {
		return perr.Forbiddenf("Incorrect UUID")
	}
	return nil
}

// Day renders t as yyyy-mm-dd in the report calendar
func (s *Svc) Day(t time.Time) string { return ptime.Day(t, s.cfg.Location) }

// Resolve fills defaults and checks both days are not in the future and ordered
func (s *Svc) Resolve(q domain.Query) (domain.Window, error) {
	today := ptime.StartOfDay(s.now(), s.cfg.Location)

	from, err := s.day(q.From, "from", today.Add(-defaultSpan))
	if err != nil {
		return domain.Window{}, err
	}
	to, err := s.day(q.To, "to", today)
	if err != nil {
		return domain.Window{}, err
	}
	for _, b := range []struct {
		name string
		day  time.Time
	}{{"from", from}, {"to", to}} {
		if b.day.After(today) {
			return domain.Window{}, perr.WithField(perr.Validationf("Date %q must be less then or equal today", b.name), b.name)
		}
	}
	if from.After(to) {
		return domain.Window{}, perr.WithField(perr.Validationf(`Date "from" must be less then or equal date "to"`), "from")
	}
	return domain.Window{From: from, To: to}, nil
}

func (s *Svc) day(raw, field string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	d, err := ptime.ParseDay(raw, s.cfg.Location)
	if err != nil {
		return time.Time{}, perr.WithField(perr.Validationf("Date %q must be formatted as yyyy-mm-dd", field), field)
	}
	return d, nil
}

// Rows pairs every event in the window with its first job and flattens both
func (s *Svc) Rows(ctx context.Context, w domain.Window) ([]domain.Row, error) {
	evs, err := s.store.EventsBetween(ctx, w.From, w.To.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(evs) == 0 {
		return []domain.Row{}, nil
	}

	ids := make([]int64, len(evs))
	for i, e := range evs {
		ids[i] = e.ID
	}
	js, err := s.store.JobsByEventIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	first := make(map[int64]jobs.Job, len(js))
	for _, j := range js {
		if _, ok := first[j.EventID]; !ok {
			first[j.EventID] = j
		}
	}

	rows := make([]domain.Row, 0, len(evs))
	for _, e := range evs {
		row := s.eventFields(e)
		if j, ok := first[e.ID]; ok {
			row = append(row, s.jobFields(j)...)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Svc) eventFields(e jobs.Event) domain.Row {
	var body events.Body
	if err := json.Unmarshal(e.Data, &body); err != nil {
		s.log.Warn().Err(err).Int64("event_id", e.ID).Msg("event body not decodable")
	}
	o := body.Payload.Object
	return domain.Row{
		{Key: "event.id", Value: e.ID},
		{Key: "event.state", Value: e.State},
		{Key: "event.reason", Value: e.Reason},
		{Key: "event.createdAt", Value: e.CreatedAt.Format(time.RFC3339)},
		{Key: "event.meta.topic", Value: o.Topic},
		{Key: "event.meta.duration", Value: o.Duration},
		{Key: "event.meta.host_email", Value: o.HostEmail},
		{Key: "event.meta.host_id", Value: o.HostID},
	}
}

func (s *Svc) jobFields(j jobs.Job) domain.Row {
	row := domain.Row{
		{Key: "record.id", Value: j.ID},
		{Key: "record.eventId", Value: j.EventID},
		{Key: "record.loadSourceState", Value: j.LoadSourceState},
		{Key: "record.publishState", Value: j.PublishState},
		{Key: "record.lastPublishAction", Value: j.LastPublishAction},
		{Key: "record.publishError", Value: j.PublishError},
		{Key: "record.isSourceRemoved", Value: j.IsSourceRemoved},
		{Key: "record.createdAt", Value: j.CreatedAt.Format(time.RFC3339)},
	}

	raw, err := json.Marshal(j.Data.Meta)
	if err != nil {
		return row
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return row
	}
	return flatten(row, "record.meta", meta)
}

// flatten appends nested objects with dot joined keys, sorted for a stable column order
func flatten(dst domain.Row, prefix string, m map[string]any) domain.Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := prefix + "." + k
		if nested, ok := m[k].(map[string]any); ok {
			dst = flatten(dst, key, nested)
			continue
		}
		dst = append(dst, domain.Field{Key: key, Value: m[k]})
	}
	return dst
}
