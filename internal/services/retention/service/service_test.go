package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recordsync/internal/platform/testkit"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/jobs/jobstest"
)

func seedPublished(t *testing.T, st *jobstest.Store, path string, created time.Time, state jobs.PublishState) jobs.Job {
	t.Helper()
	return st.AddJob(jobs.Job{
		LoadSourceState: jobs.LoadSuccess,
		PublishState:    state,
		CreatedAt:       created,
		Data:            jobs.JobData{Meta: jobs.Meta{LocalFilePath: path}},
	})
}

func TestSweep_RemovesOldPublishedSources(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	st := jobstest.New()
	s := New(st, Config{Window: 24 * time.Hour})
	s.now = func() time.Time { return now }

	oldPath := testkit.WriteFile(t, dir, "videos/old.mp4", "x")
	freshPath := testkit.WriteFile(t, dir, "videos/fresh.mp4", "x")
	failedPath := testkit.WriteFile(t, dir, "videos/failed.mp4", "x")
	old := seedPublished(t, st, oldPath, now.Add(-48*time.Hour), jobs.PublishSuccess)
	fresh := seedPublished(t, st, freshPath, now.Add(-time.Hour), jobs.PublishSuccess)
	failed := seedPublished(t, st, failedPath, now.Add(-48*time.Hour), jobs.PublishFailed)

	n, err := s.Sweep(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("old source still on disk")
	}
	for _, p := range []string{freshPath, failedPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s removed: %v", p, err)
		}
	}
	if j, _ := st.Job(old.ID); !j.IsSourceRemoved {
		t.Fatalf("flag not set")
	}
	for _, id := range []int64{fresh.ID, failed.ID} {
		if j, _ := st.Job(id); j.IsSourceRemoved {
			t.Fatalf("job %d flagged", id)
		}
	}

	// a second pass has nothing to do
	n, err = s.Sweep(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("second sweep n=%d err=%v", n, err)
	}
}

func TestSweep_MissingFileCountsAsRemoved(t *testing.T) {
	st := jobstest.New()
	s := New(st, Config{Window: time.Hour})
	j := seedPublished(t, st, filepath.Join(t.TempDir(), "gone.mp4"), time.Now().Add(-2*time.Hour), jobs.PublishSuccess)

	if n, err := s.Sweep(context.Background()); err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if got, _ := st.Job(j.ID); !got.IsSourceRemoved {
		t.Fatalf("flag not set")
	}
}

func TestSweep_RemoveFailureLeavesRow(t *testing.T) {
	st := jobstest.New()
	s := New(st, Config{Window: time.Hour})
	s.remove = func(string) error { return errors.New("permission denied") }
	a := seedPublished(t, st, "/data/a.mp4", time.Now().Add(-2*time.Hour), jobs.PublishSuccess)

	n, err := s.Sweep(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if got, _ := st.Job(a.ID); got.IsSourceRemoved {
		t.Fatalf("row flagged despite failure")
	}
}

func TestSweep_StoreError(t *testing.T) {
	st := jobstest.New()
	st.SetFail("ForRetention", errors.New("db down"))
	s := New(st, Config{})
	if _, err := s.Sweep(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := jobstest.New()
	s := New(st, Config{Period: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}
