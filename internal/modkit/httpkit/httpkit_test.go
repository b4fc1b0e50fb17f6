package httpkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	phttp "recordsync/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type echoIn struct {
	Name string `json:"name" validate:"required"`
}

type echoQ struct {
	N int `query:"n"`
}

func TestMountAPIV1_WithCommonStack(t *testing.T) {
	m := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(m), CommonStack(), func(api Router) {
		api.Route("/echo", func(r Router) {
			PostJSON(r, "/", func(_ *http.Request, in echoIn) (any, error) { return in.Name, nil })
			GetQuery(r, "/q", func(_ *http.Request, q echoQ) (any, error) { return q.N, nil })
			Get(r, "/bare", func(*http.Request) (any, error) { return Bare(map[string]int{"x": 1}), nil })
		})
	})

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{"name":"a"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("post status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-Id") == "" && !strings.Contains(rr.Body.String(), "request_id") {
		t.Fatalf("expected request id in envelope: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/echo/q?n=3", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"data":3`) {
		t.Fatalf("query status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/echo/bare", nil))
	if strings.TrimSpace(rr.Body.String()) != `{"x":1}` {
		t.Fatalf("bare body=%s", rr.Body.String())
	}

}

func TestCommonStack_RecoversPanics(t *testing.T) {
	m := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(m), CommonStack(), func(api Router) {
		api.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	})

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "panic recovered") {
		t.Fatalf("body=%s", rr.Body.String())
	}
}
