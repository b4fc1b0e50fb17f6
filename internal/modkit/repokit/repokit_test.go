package repokit

import (
	"context"
	"errors"
	"testing"

	"recordsync/internal/platform/testkit"
)

type stubQ struct{ Queryer }

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

func TestBindFunc(t *testing.T) {
	type repo struct{ q Queryer }
	b := BindFunc[repo](func(q Queryer) repo { return repo{q: q} })

	q := stubQ{}
	if got := MustBind[repo](b, q); got.q != q {
		t.Fatalf("bound queryer mismatch")
	}
	testkit.MustPanic(t, func() { MustBind[repo](b, nil) })
}

func TestMustGuard(t *testing.T) {
	var sawDeadline bool
	MustGuard(context.Background(), guardFunc(func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	}))
	if !sawDeadline {
		t.Fatalf("expected a default deadline")
	}

	testkit.MustPanic(t, func() {
		MustGuard(context.Background(), guardFunc(func(context.Context) error { return errors.New("down") }))
	})
}
