package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"recordsync/internal/platform/config"
	perr "recordsync/internal/platform/errors"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/jobs/jobstest"
	"recordsync/internal/services/quota/domain"
)

var la = mustLoc("America/Los_Angeles")

func mustLoc(name string) *time.Location {
	l, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return l
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newGov(t *testing.T, budget int) (*Svc, *jobstest.Store, *clock) {
	t.Helper()
	st := jobstest.New()
	s := New(st, Config{Budget: budget, Costs: DefaultCosts(), Location: la})
	c := &clock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, la)}
	s.now = c.now
	return s, st, c
}

func persisted(t *testing.T, st *jobstest.Store) domain.State {
	t.Helper()
	raw, err := st.GetSetting(context.Background(), jobs.SettingQuota)
	if err != nil {
		t.Fatalf("quota row: %v", err)
	}
	var s domain.State
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return s
}

func TestCheck_MissingRowIsFullBudgetAndPersists(t *testing.T) {
	s, st, _ := newGov(t, 10000)
	ok, err := s.Check(context.Background(), domain.OpVideoUpload)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	got := persisted(t, st)
	if got.LastResetDay != "2024-03-10" || got.RemainingPoints != 10000 {
		t.Fatalf("state=%+v", got)
	}
}

func TestCheck_SumsCosts(t *testing.T) {
	s, _, _ := newGov(t, 1650)
	ctx := context.Background()
	if ok, _ := s.Check(ctx, domain.OpVideoUpload, domain.OpPlaylistAddItem); !ok {
		t.Fatalf("1650 should fit")
	}
	if ok, _ := s.Check(ctx, domain.OpVideoUpload, domain.OpPlaylistAddItem, domain.OpPlaylistCreate); ok {
		t.Fatalf("1700 should not fit")
	}
}

func TestCheck_UnknownOp(t *testing.T) {
	s, _, _ := newGov(t, 100)
	if _, err := s.Check(context.Background(), domain.Op("bogus")); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestPay_DeductsAndPersists(t *testing.T) {
	s, st, _ := newGov(t, 1700)
	ctx := context.Background()

	for _, op := range []domain.Op{domain.OpVideoUpload, domain.OpPlaylistAddItem} {
		if ok, err := s.Pay(ctx, op); err != nil || !ok {
			t.Fatalf("pay %s ok=%v err=%v", op, ok, err)
		}
	}
	if got := persisted(t, st).RemainingPoints; got != 50 {
		t.Fatalf("remaining=%d", got)
	}

	// insufficient pay leaves the counter untouched
	if ok, err := s.Pay(ctx, domain.OpVideoUpload); err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if n, _ := s.Remaining(ctx); n != 50 {
		t.Fatalf("remaining=%d", n)
	}
}

func TestReset_OncePerDayBoundary(t *testing.T) {
	s, st, c := newGov(t, 100)
	ctx := context.Background()

	_, _ = s.Pay(ctx, domain.OpPlaylistCreate)
	c.t = time.Date(2024, 3, 10, 23, 59, 0, 0, la)
	if n, _ := s.Remaining(ctx); n != 50 {
		t.Fatalf("same day must not reset, remaining=%d", n)
	}

	c.t = time.Date(2024, 3, 11, 0, 1, 0, 0, la)
	ok, err := s.Check(ctx, domain.OpList)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	got := persisted(t, st)
	if got.LastResetDay != "2024-03-11" || got.RemainingPoints != 100 {
		t.Fatalf("reset persisted=%+v", got)
	}

	_, _ = s.Pay(ctx, domain.OpList)
	c.t = c.t.Add(time.Hour)
	if n, _ := s.Remaining(ctx); n != 99 {
		t.Fatalf("second check same day must not reset, remaining=%d", n)
	}
}

func TestReset_UsesResetTimezone(t *testing.T) {
	s, _, c := newGov(t, 100)
	ctx := context.Background()
	_, _ = s.Pay(ctx, domain.OpPlaylistCreate)

	// 2024-03-11 03:00 UTC is still the 10th in Los Angeles
	c.t = time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC)
	if n, _ := s.Remaining(ctx); n != 50 {
		t.Fatalf("remaining=%d", n)
	}
}

func TestLoad_ResumesPersistedState(t *testing.T) {
	st := jobstest.New()
	raw, _ := json.Marshal(domain.State{LastResetDay: "2024-03-10", RemainingPoints: 42})
	_ = st.PutSetting(context.Background(), jobs.SettingQuota, raw)

	s := New(st, Config{Budget: 10000, Location: la})
	s.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, la) }
	if n, err := s.Remaining(context.Background()); err != nil || n != 42 {
		t.Fatalf("remaining=%d err=%v", n, err)
	}
}

func TestForceExhaust(t *testing.T) {
	s, st, _ := newGov(t, 10000)
	ctx := context.Background()
	if err := s.ForceExhaust(ctx); err != nil {
		t.Fatalf("force: %v", err)
	}
	if persisted(t, st).RemainingPoints != 0 {
		t.Fatalf("not persisted")
	}
	if ok, _ := s.Check(ctx, domain.OpList); ok {
		t.Fatalf("exhausted budget must fail checks")
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	s, st, _ := newGov(t, 100)
	ctx := context.Background()
	if n, _ := s.Remaining(ctx); n != 100 {
		t.Fatalf("remaining=%d", n)
	}

	st.SetFail("PutSetting", errors.New("db down"))
	if _, err := s.Pay(ctx, domain.OpPlaylistCreate); err == nil {
		t.Fatalf("expected error")
	}
	st.SetFail("PutSetting", nil)
	if n, _ := s.Remaining(ctx); n != 100 {
		t.Fatalf("failed pay must not deduct, remaining=%d", n)
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("QUOTA_DAILY_BUDGET", "500")
	t.Setenv("QUOTA_COST_VIDEO_UPLOAD", "400")
	t.Setenv("QUOTA_RESET_TIMEZONE", "UTC")
	cfg := FromConfig(config.New())
	if cfg.Budget != 500 || cfg.Costs[domain.OpVideoUpload] != 400 || cfg.Costs[domain.OpList] != 1 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Location.String() != "UTC" {
		t.Fatalf("location=%v", cfg.Location)
	}
}
