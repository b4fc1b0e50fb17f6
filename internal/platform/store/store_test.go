package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"recordsync/internal/platform/store/pg"
	"recordsync/internal/platform/testkit"

	"github.com/rs/zerolog"
)

type pingTx struct {
	fakeQuerier
	pingErr error
	closed  int
}

func (p *pingTx) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(p) }
func (p *pingTx) Ping(context.Context) error                                { return p.pingErr }
func (p *pingTx) Close() error                                              { p.closed++; return nil }

func TestOpen_DisabledPGLeavesSeamNil(t *testing.T) {
	s, err := Open(context.Background(), Config{AppName: "test"}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	if s.PG != nil {
		t.Fatal("PG should be nil when disabled")
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard() = %v, want nil", err)
	}
}

func TestOpen_UsesOpener(t *testing.T) {
	fake := &pingTx{}
	testkit.Swap(t, &openPGFn, func(context.Context, Config, *Store) (TxRunner, error) { return fake, nil })

	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true}})
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	if s.PG != fake {
		t.Fatal("PG seam not set from opener")
	}

	fake.pingErr = errors.New("down")
	if err := s.Guard(context.Background()); err == nil || !errors.Is(err, fake.pingErr) {
		t.Fatalf("Guard() = %v, want wrapped down", err)
	}

	if err := s.Close(context.Background()); err != nil || fake.closed != 1 {
		t.Fatalf("Close() = %v closed=%d", err, fake.closed)
	}
}

func TestOpen_OptionError(t *testing.T) {
	bad := func(*Store) error { return errors.New("bad option") }
	if _, err := Open(context.Background(), Config{}, bad); err == nil {
		t.Fatal("Open() should surface option errors")
	}
}

func TestGuard_NilStore(t *testing.T) {
	var s *Store
	if err := s.Guard(context.Background()); err == nil {
		t.Fatal("Guard() on nil store should fail")
	}
}

func TestOpenPG_RetriesUntilPingSucceeds(t *testing.T) {
	calls := 0
	testkit.Swap(t, &pingPool, func(context.Context, *pg.PG) error {
		calls++
		if calls < 3 {
			return errors.New("starting up")
		}
		return nil
	})
	var slept []time.Duration
	testkit.Swap(t, &sleep, func(d time.Duration) { slept = append(slept, d) })

	s := &Store{Log: zerolog.Nop()}
	cfg := Config{PG: PGConfig{URL: "postgres://u:p@127.0.0.1:1/db?sslmode=disable", ConnectRetries: 5}}
	tx, err := openPG(context.Background(), cfg, s)
	if err != nil {
		t.Fatalf("openPG() err = %v", err)
	}
	defer func() { _ = tx.(*pgAdapter).Close() }()

	if calls != 3 {
		t.Fatalf("ping calls = %d, want 3", calls)
	}
	if len(slept) != 2 || slept[1] != 2*slept[0] {
		t.Fatalf("backoff = %v, want doubling", slept)
	}
}

func TestOpenPG_GivesUp(t *testing.T) {
	testkit.Swap(t, &pingPool, func(context.Context, *pg.PG) error { return errors.New("nope") })
	testkit.Swap(t, &sleep, func(time.Duration) {})

	s := &Store{Log: zerolog.Nop()}
	cfg := Config{PG: PGConfig{URL: "postgres://u:p@127.0.0.1:1/db", ConnectRetries: 2}}
	if _, err := openPG(context.Background(), cfg, s); err == nil {
		t.Fatal("openPG() should fail after retries")
	}
}
