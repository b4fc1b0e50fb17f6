// Package module wires the upload scheduler
package module

import (
	"recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/repokit"
	jobsrepo "recordsync/internal/services/jobs/repo"
	quota "recordsync/internal/services/quota/domain"
	"recordsync/internal/services/upload/domain"
	"recordsync/internal/services/upload/service"
)

// Requires lists what the scheduler borrows from the credentials module
type Requires struct {
	Publishers domain.PublisherSource
	Governor   quota.Governor
}

// Module defines the upload module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the upload module; non-zero overrides win over env
func New(deps modkit.Deps, req Requires, overrides Options) *Module {
	if req.Publishers == nil || req.Governor == nil {
		panic("upload module requires a publisher source and a governor")
	}
	opts := FromConfig(deps.Cfg)
	if overrides.Period != 0 {
		opts.Period = overrides.Period
	}
	if overrides.Delay != 0 {
		opts.Delay = overrides.Delay
	}
	if overrides.LeaseTTL != 0 {
		opts.LeaseTTL = overrides.LeaseTTL
	}

	svc := service.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), req.Publishers, req.Governor, service.Config{
		Period:   opts.Period,
		Delay:    opts.Delay,
		LeaseTTL: opts.LeaseTTL,
	})
	return &Module{deps: deps, ports: Ports{Scheduler: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "upload" }

// Ports returns the module ports (Scheduler)
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes, upload is a background worker
func (m *Module) MountRoutes(_ httpkit.Router) {}
