package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/testkit"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/jobs/jobstest"
	"recordsync/internal/services/report/domain"
)

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func newSvc(st *jobstest.Store) *Svc {
	s := New(st, Config{RouteUUID: "secret", Location: time.UTC})
	s.now = func() time.Time { return now }
	return s
}

func TestAuthorize(t *testing.T) {
	s := newSvc(jobstest.New())
	if err := s.Authorize(""); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing: %v", err)
	}
	if err := s.Authorize("nope"); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("wrong: %v", err)
	}
	if err := s.Authorize("secret"); err != nil {
		t.Fatalf("ok: %v", err)
	}
}

func TestResolve(t *testing.T) {
	s := newSvc(jobstest.New())

	w, err := s.Resolve(domain.Query{})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if s.Day(w.From) != "2024-03-03" || s.Day(w.To) != "2024-03-10" {
		t.Fatalf("window=%s..%s", s.Day(w.From), s.Day(w.To))
	}

	cases := map[string]domain.Query{
		"from after to": {From: "2024-03-05", To: "2024-03-04"},
		"future to":     {To: "2024-03-11"},
		"future from":   {From: "2024-04-01", To: "2024-03-10"},
		"bad day":       {From: "2024-02-30"},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Resolve(q); !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	_, err = s.Resolve(domain.Query{From: "2024-03-05", To: "2024-03-04"})
	if msg := perr.WireFrom(err).Message; msg != `Date "from" must be less then or equal date "to"` {
		t.Fatalf("msg=%q", msg)
	}

	if _, err := s.Resolve(domain.Query{From: "2024-03-10", To: "2024-03-10"}); err != nil {
		t.Fatalf("same day: %v", err)
	}
}

func eventBody(t *testing.T, topic, email string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"event": "recording.completed",
		"payload": map[string]any{"object": map[string]any{
			"topic": topic, "duration": 42, "host_email": email, "host_id": "h1",
		}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestRows_FirstJobPerEventInWindow(t *testing.T) {
	st := jobstest.New()
	s := newSvc(st)

	in := st.AddEvent(jobs.Event{State: jobs.EventProcessed, Data: eventBody(t, "a;b;c", "x@test"), CreatedAt: now.Add(-time.Hour)})
	rejected := st.AddEvent(jobs.Event{State: jobs.EventRejected, Reason: "Video is too short", Data: eventBody(t, "short", "y@test"), CreatedAt: now.Add(-2 * time.Hour)})
	st.AddEvent(jobs.Event{State: jobs.EventProcessed, Data: eventBody(t, "old", "z@test"), CreatedAt: now.AddDate(0, 0, -30)})

	first := st.AddJob(jobs.Job{EventID: in.ID, CreatedAt: now.Add(-50 * time.Minute), Data: jobs.JobData{Meta: jobs.Meta{
		Title: "a", Topic: jobs.Topic{Theme: "a", Speaker: "b", Playlist: "c", IsParsed: true},
	}}})
	st.AddJob(jobs.Job{EventID: in.ID, CreatedAt: now.Add(-40 * time.Minute), Data: jobs.JobData{Meta: jobs.Meta{Title: "second"}}})

	w, err := s.Resolve(domain.Query{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	rows, err := s.Rows(context.Background(), w)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d", len(rows))
	}

	byEvent := map[int64]domain.Row{}
	for _, r := range rows {
		id, _ := r.Get("event.id")
		byEvent[id.(int64)] = r
	}
	r := byEvent[in.ID]
	if v, _ := r.Get("record.id"); v != first.ID {
		t.Fatalf("record.id=%v", v)
	}
	if v, _ := r.Get("record.meta.title"); v != "a" {
		t.Fatalf("title=%v", v)
	}
	if v, _ := r.Get("record.meta.topic.speaker"); v != "b" {
		t.Fatalf("nested topic not flattened: %v", v)
	}
	if v, _ := r.Get("event.meta.host_email"); v != "x@test" {
		t.Fatalf("host_email=%v", v)
	}

	rr := byEvent[rejected.ID]
	if _, ok := rr.Get("record.id"); ok {
		t.Fatalf("rejected event has no job")
	}
	if v, _ := rr.Get("event.reason"); v != "Video is too short" {
		t.Fatalf("reason=%v", v)
	}
}

func TestRows_ToDayIsInclusive(t *testing.T) {
	st := jobstest.New()
	s := newSvc(st)
	st.AddEvent(jobs.Event{State: jobs.EventRejected, Data: eventBody(t, "x", "e"), CreatedAt: time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)})
	st.AddEvent(jobs.Event{State: jobs.EventRejected, Data: eventBody(t, "y", "e"), CreatedAt: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)})

	w, _ := s.Resolve(domain.Query{From: "2024-03-05", To: "2024-03-05"})
	rows, err := s.Rows(context.Background(), w)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%d err=%v", len(rows), err)
	}
}

func TestRenderTSV_WidestHeaderAndEscaping(t *testing.T) {
	rows := []domain.Row{
		{{Key: "event.id", Value: 1}},
		{{Key: "event.id", Value: 2}, {Key: "record.publishError", Value: "line1\nline2"}},
	}
	got := string(RenderTSV(rows))
	want := "event.id\trecord.publishError\n1\t\n2\tline1\\nline2\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderHTML_ReversedAndEscaped(t *testing.T) {
	rows := []domain.Row{
		{{Key: "k", Value: "first"}},
		{{Key: "k", Value: "<b>second</b>"}},
		{{Key: "k", Value: "</td><script>alert(1)</script>"}},
	}
	raw, err := RenderHTML(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(raw)
	testkit.MustContain(t, got, "<th>k</th>")
	testkit.MustContain(t, got, "border-collapse:collapse")
	if strings.Contains(got, "<script>") {
		t.Fatalf("cell markup not escaped: %s", got)
	}
	second := strings.Index(got, "&lt;b&gt;second&lt;/b&gt;")
	first := strings.Index(got, "<td>first</td>")
	if second < 0 || first < 0 || second > first {
		t.Fatalf("rows not reversed or not escaped: %s", got)
	}
}

func TestRowMarshal_KeepsOrder(t *testing.T) {
	raw, err := json.Marshal(domain.Row{{Key: "b", Value: 1}, {Key: "a", Value: "x"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"b":1,"a":"x"}` {
		t.Fatalf("got %s", raw)
	}
}
