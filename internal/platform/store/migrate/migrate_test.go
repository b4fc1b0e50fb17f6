package migrate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"recordsync/internal/platform/store"
)

func TestLoad_SortsAndSkipsNonSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_b.sql": {Data: []byte("b")},
		"migrations/0001_a.sql": {Data: []byte("a")},
		"migrations/README.md":  {Data: []byte("x")},
	}
	ms, err := load(fsys)
	if err != nil {
		t.Fatalf("load() err = %v", err)
	}
	if len(ms) != 2 || ms[0].Version != "0001_a" || ms[1].SQL != "b" {
		t.Fatalf("load() = %+v", ms)
	}
}

func TestLoad_Embedded(t *testing.T) {
	ms, err := Load()
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if len(ms) == 0 || ms[0].Version != "0001_init" {
		t.Fatalf("Load() = %+v", ms)
	}
	for _, table := range []string{"events", "jobs", "settings", "playlists"} {
		if !strings.Contains(ms[0].SQL, "create table if not exists "+table) {
			t.Fatalf("init migration misses table %s", table)
		}
	}
}

type tag struct{}

func (tag) String() string      { return "" }
func (tag) RowsAffected() int64 { return 0 }

type countRow struct{ n int }

func (r countRow) Scan(dest ...any) error {
	*(dest[0].(*int)) = r.n
	return nil
}

// fakeDB records executed sql and reports versions in done as already applied
type fakeDB struct {
	done    map[string]bool
	execs   []string
	failOn  string
	lastArg any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return nil, errors.New("exec failed")
	}
	f.execs = append(f.execs, sql)
	return tag{}, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("not used")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) store.Row {
	if f.done[args[0].(string)] {
		return countRow{n: 1}
	}
	return countRow{}
}

func (f *fakeDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error { return fn(f) }

func TestApply_SkipsAppliedVersions(t *testing.T) {
	db := &fakeDB{done: map[string]bool{"0001": true}}
	ms := []Migration{{Version: "0001", SQL: "one"}, {Version: "0002", SQL: "two"}}

	applied, err := apply(context.Background(), db, ms)
	if err != nil {
		t.Fatalf("apply() err = %v", err)
	}
	if len(applied) != 1 || applied[0] != "0002" {
		t.Fatalf("applied = %v, want [0002]", applied)
	}
	for _, sql := range db.execs {
		if sql == "one" {
			t.Fatal("already applied migration ran again")
		}
	}
}

func TestApply_StopsOnFailure(t *testing.T) {
	db := &fakeDB{failOn: "broken"}
	ms := []Migration{{Version: "0001", SQL: "broken"}}
	if _, err := apply(context.Background(), db, ms); err == nil || !strings.Contains(err.Error(), "0001") {
		t.Fatalf("apply() err = %v, want version in message", err)
	}
}
