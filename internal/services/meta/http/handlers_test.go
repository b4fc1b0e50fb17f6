package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "recordsync/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type fakePG struct{ err error }

func (f fakePG) Ping(context.Context) error { return f.err }

type fakeCred bool

func (f fakeCred) Available() bool { return bool(f) }

type fakeBudget struct {
	n   int
	err error
}

func (f fakeBudget) Remaining(context.Context) (int, error) { return f.n, f.err }

func ready(t *testing.T, d Deps) ReadyResponse {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/ready", nil))
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var env struct {
		Data ReadyResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		deps Deps
		want string
	}{
		{"all ok", Deps{PG: fakePG{}, Credential: fakeCred(true), Budget: fakeBudget{n: 9000}}, "ok"},
		{"no consent", Deps{PG: fakePG{}, Credential: fakeCred(false), Budget: fakeBudget{n: 9000}}, "degraded"},
		{"quota exhausted", Deps{PG: fakePG{}, Credential: fakeCred(true), Budget: fakeBudget{}}, "degraded"},
		{"nothing wired", Deps{}, "degraded"},
		{"db down", Deps{PG: fakePG{err: errors.New("refused")}, Credential: fakeCred(true), Budget: fakeBudget{n: 1}}, "fail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ready(t, tc.deps)
			if got.Status != tc.want || len(got.Checks) != 3 {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestReady_QuotaDetail(t *testing.T) {
	got := ready(t, Deps{PG: fakePG{}, Credential: fakeCred(true), Budget: fakeBudget{n: 42}})
	if got.Checks[2].Name != "quota" || got.Checks[2].Detail != "42" {
		t.Fatalf("checks=%+v", got.Checks)
	}
}

func TestService(t *testing.T) {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), Deps{ServiceName: "recordsync", StartedAt: time.Now().Add(-time.Minute)})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/service", nil))

	var env struct {
		Data ServiceResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Name != "recordsync" || env.Data.Uptime < 59 {
		t.Fatalf("got %+v", env.Data)
	}
}
