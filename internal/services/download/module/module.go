// Package module wires the download scheduler and exposes its ports
package module

import (
	"recordsync/internal/adapters/recording"
	"recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/repokit"
	"recordsync/internal/services/download/service"
	jobsrepo "recordsync/internal/services/jobs/repo"
)

// Module defines the download module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the download module; non-zero overrides win over env
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Concurrency != 0 {
		opts.Concurrency = overrides.Concurrency
	}
	if overrides.Period != 0 {
		opts.Period = overrides.Period
	}
	if overrides.Delay != 0 {
		opts.Delay = overrides.Delay
	}

	client := recording.NewClient(recording.Options{
		Timeout:    opts.Timeout,
		RPS:        opts.RPS,
		Burst:      opts.Burst,
		MaxRetries: opts.MaxRetries,
		RetryBase:  opts.RetryBase,
	})
	svc := service.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), client, service.Config{
		Period:      opts.Period,
		Delay:       opts.Delay,
		Concurrency: opts.Concurrency,
		LeaseTTL:    opts.LeaseTTL,
	})

	return &Module{deps: deps, ports: Ports{Scheduler: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "download" }

// Ports returns the module ports (Scheduler)
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes, download is a background worker
func (m *Module) MountRoutes(_ httpkit.Router) {}
