//go:build integration_pg

package migrate

import (
	"context"
	"io"
	"testing"
	"time"

	"recordsync/internal/platform/store"
	"recordsync/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestApply_Integration_Idempotent(t *testing.T) {
	dsn := testkit.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "recordsync-migrate-it",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = st.Close(ctx) }()

	first, err := Apply(ctx, st.PG)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("expected migrations to apply on a fresh database")
	}

	second, err := Apply(ctx, st.PG)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no migrations on second run, got %v", second)
	}

	for _, table := range []string{"events", "jobs", "settings", "playlists"} {
		n, err := store.Scalar[int](ctx, st.PG,
			`SELECT count(*) FROM information_schema.tables WHERE table_name = $1`, table)
		if err != nil || n != 1 {
			t.Fatalf("table %s missing: n=%d err=%v", table, n, err)
		}
	}
}
