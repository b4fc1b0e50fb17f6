// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"strconv"
	"time"

	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/platform/version"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Credential reports whether publishing is possible
type Credential interface {
	Available() bool
}

// Budget reports the points left today
type Budget interface {
	Remaining(ctx stdctx.Context) (int, error)
}

// Deps are the handler dependencies, nil members are reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	Credential  Credential
	Budget      Budget
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

//
// Swagger DTOs and route docs
//

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Detail string `json:"detail,omitempty" example:"9800"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2024-03-10T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"recordsync"`
	Started string `json:"started" example:"2024-03-10T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness with database, credential and quota checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := []ReadyCheck{h.pg(ctx), h.credential(), h.budget(ctx)}

	// only the database failing makes the service unusable
	overall := "ok"
	for _, c := range checks {
		switch {
		case c.Name == "pg" && c.Status == "fail":
			overall = "fail"
		case c.Status != "ok" && overall == "ok":
			overall = "degraded"
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) pg(ctx stdctx.Context) ReadyCheck {
	if h.deps.PG == nil {
		return ReadyCheck{Name: "pg", Status: "skipped"}
	}
	p, ok := h.deps.PG.(Pinger)
	if !ok {
		return ReadyCheck{Name: "pg", Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: "pg", Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: "pg", Status: "ok"}
}

func (h *handlers) credential() ReadyCheck {
	if h.deps.Credential == nil {
		return ReadyCheck{Name: "credential", Status: "skipped"}
	}
	if !h.deps.Credential.Available() {
		return ReadyCheck{Name: "credential", Status: "fail", Error: "consent not granted"}
	}
	return ReadyCheck{Name: "credential", Status: "ok"}
}

func (h *handlers) budget(ctx stdctx.Context) ReadyCheck {
	if h.deps.Budget == nil {
		return ReadyCheck{Name: "quota", Status: "skipped"}
	}
	n, err := h.deps.Budget.Remaining(ctx)
	if err != nil {
		return ReadyCheck{Name: "quota", Status: "fail", Error: err.Error()}
	}
	c := ReadyCheck{Name: "quota", Status: "ok", Detail: strconv.Itoa(n)}
	if n <= 0 {
		c.Status = "fail"
		c.Error = "exhausted until the daily reset"
	}
	return c
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}
