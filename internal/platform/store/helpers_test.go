package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	perr "recordsync/internal/platform/errors"
)

type cmdTag int64

func (c cmdTag) String() string      { return "UPDATE" }
func (c cmdTag) RowsAffected() int64 { return int64(c) }

type fakeRows struct {
	data [][]any
	idx  int
	err  error
}

func newRows(data ...[]any) *fakeRows { return &fakeRows{data: data, idx: -1} }

func (r *fakeRows) Columns() []string { return nil }
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx]
	for i := range dest {
		switch p := dest[i].(type) {
		case *int64:
			*p = row[i].(int64)
		case *string:
			*p = row[i].(string)
		default:
			return errors.New("unsupported dest")
		}
	}
	return nil
}

type fakeRow struct {
	val any
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int); ok {
		*p = r.val.(int)
	}
	return nil
}

type fakeQuerier struct {
	tag     CommandTag
	execErr error
	rows    Rows
	row     Row

	lastSQL string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.lastSQL = sql
	return f.tag, f.execErr
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (Rows, error) {
	f.lastSQL = sql
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) Row {
	f.lastSQL = sql
	return f.row
}

func TestExecOne(t *testing.T) {
	cases := []struct {
		name    string
		tag     cmdTag
		execErr error
		check   func(error) bool
	}{
		{"one row", 1, nil, func(err error) bool { return err == nil }},
		{"no rows", 0, nil, func(err error) bool { return perr.IsCode(err, perr.ErrorCodeNotFound) }},
		{"many rows", 3, nil, func(err error) bool { return err != nil && strings.Contains(err.Error(), "got 3") }},
		{"exec error", 0, errors.New("boom"), func(err error) bool { return err != nil && err.Error() == "boom" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQuerier{tag: tc.tag, execErr: tc.execErr}
			if err := ExecOne(context.Background(), q, "update x"); !tc.check(err) {
				t.Fatalf("ExecOne() = %v", err)
			}
		})
	}
}

func TestAffected(t *testing.T) {
	q := &fakeQuerier{tag: cmdTag(4)}
	n, err := Affected(context.Background(), q, "update x")
	if err != nil || n != 4 {
		t.Fatalf("Affected() = %d, %v, want 4, nil", n, err)
	}
}

func TestScalar(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{val: 7}}
	v, err := Scalar[int](context.Background(), q, "select 7")
	if err != nil || v != 7 {
		t.Fatalf("Scalar() = %d, %v, want 7, nil", v, err)
	}

	q = &fakeQuerier{row: fakeRow{err: perr.ErrNotFound}}
	if _, err := Scalar[int](context.Background(), q, "select"); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("Scalar() err = %v, want not found", err)
	}
}

func scanPair(r Row) ([2]any, error) {
	var id int64
	var name string
	err := r.Scan(&id, &name)
	return [2]any{id, name}, err
}

func TestOne(t *testing.T) {
	ctx := context.Background()

	q := &fakeQuerier{rows: newRows([]any{int64(1), "a"})}
	got, err := One(ctx, q, scanPair, "select")
	if err != nil || got[0] != int64(1) || got[1] != "a" {
		t.Fatalf("One() = %v, %v", got, err)
	}

	q = &fakeQuerier{rows: newRows()}
	if _, err := One(ctx, q, scanPair, "select"); !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("One() on empty err = %v, want not found", err)
	}

	q = &fakeQuerier{rows: newRows([]any{int64(1), "a"}, []any{int64(2), "b"})}
	if _, err := One(ctx, q, scanPair, "select"); err == nil {
		t.Fatal("One() with two rows should fail")
	}
}

func TestMany(t *testing.T) {
	q := &fakeQuerier{rows: newRows([]any{int64(1), "a"}, []any{int64(2), "b"})}
	got, err := Many(context.Background(), q, scanPair, "select")
	if err != nil {
		t.Fatalf("Many() err = %v", err)
	}
	if len(got) != 2 || got[1][1] != "b" {
		t.Fatalf("Many() = %v", got)
	}

	q = &fakeQuerier{rows: &fakeRows{idx: -1, err: errors.New("iter")}}
	if _, err := Many(context.Background(), q, scanPair, "select"); err == nil || err.Error() != "iter" {
		t.Fatalf("Many() err = %v, want iter", err)
	}
}
