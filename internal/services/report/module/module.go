// Package module wires the report endpoint into the API using modkit
package module

import (
	modkit "recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/repokit"
	jobsrepo "recordsync/internal/services/jobs/repo"
	rephttp "recordsync/internal/services/report/http"
	repsvc "recordsync/internal/services/report/service"
)

// Module implements the report module
type Module struct {
	built modkit.Built
	ports Ports
	svc   *repsvc.Svc
}

// New constructs the report module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("report"), modkit.WithPrefix("/report")}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc := repsvc.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), repsvc.Config{
		RouteUUID: o.RouteUUID,
		Location:  o.Location,
	})

	return &Module{built: b, svc: svc, ports: Ports{Reporter: svc}}
}

// MountRoutes mounts GET /report
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { rephttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports (Reporter)
func (m *Module) Ports() any { return m.ports }
