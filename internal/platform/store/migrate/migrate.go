// Package migrate applies the embedded schema migrations
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"recordsync/internal/platform/logger"
	"recordsync/internal/platform/store"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// lockKey serializes concurrent boots on the same database
const lockKey int64 = 0x7265636f7264

// Migration is one versioned sql file
type Migration struct {
	Version string
	SQL     string
}

// Load returns the embedded migrations ordered by version
func Load() ([]Migration, error) {
	return load(migrationFS)
}

func load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: strings.TrimSuffix(name, ".sql"), SQL: string(data)})
	}
	return out, nil
}

// Apply runs every pending migration inside one transaction and returns the applied versions
func Apply(ctx context.Context, db store.TxRunner) ([]string, error) {
	ms, err := Load()
	if err != nil {
		return nil, err
	}
	return apply(ctx, db, ms)
}

func apply(ctx context.Context, db store.TxRunner, ms []Migration) ([]string, error) {
	log := logger.Named("migrate")
	var applied []string

	err := db.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		if _, err := q.Exec(ctx, `
create table if not exists schema_migrations (
  version    text primary key,
  applied_at timestamptz not null default now()
)`); err != nil {
			return fmt.Errorf("ensure schema_migrations: %w", err)
		}

		for _, m := range ms {
			n, err := store.Scalar[int](ctx, q, `SELECT count(1) FROM schema_migrations WHERE version = $1`, m.Version)
			if err != nil {
				return fmt.Errorf("check migration %s: %w", m.Version, err)
			}
			if n > 0 {
				continue
			}
			if _, err := q.Exec(ctx, m.SQL); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Version, err)
			}
			if _, err := q.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
				return fmt.Errorf("record migration %s: %w", m.Version, err)
			}
			applied = append(applied, m.Version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		log.Info().Strs("versions", applied).Msg("migrations applied")
	}
	return applied, nil
}
