// Package module wires the retention sweep
package module

import (
	"recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/repokit"
	jobsrepo "recordsync/internal/services/jobs/repo"
	"recordsync/internal/services/retention/service"
)

// Module defines the retention module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the retention module
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Period != 0 {
		opts.Period = overrides.Period
	}
	if overrides.Window != 0 {
		opts.Window = overrides.Window
	}
	svc := service.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), service.Config{
		Period: opts.Period,
		Window: opts.Window,
	})
	return &Module{deps: deps, ports: Ports{Sweeper: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "retention" }

// Ports returns the module ports (Sweeper)
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
