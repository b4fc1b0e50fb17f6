// Package module wires the webhook classifier into the API using modkit
package module

import (
	modkit "recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/repokit"
	evhttp "recordsync/internal/services/events/http"
	evsvc "recordsync/internal/services/events/service"
	jobsrepo "recordsync/internal/services/jobs/repo"
)

// Module implements the events module
type Module struct {
	built modkit.Built
	ports Ports
	svc   *evsvc.Svc
}

// New constructs the events module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("events"), modkit.WithPrefix("/events")}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc := evsvc.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), evsvc.Config{
		SecretToken:          o.SecretToken,
		MinDurationMinutes:   o.MinDurationMinutes,
		SkipPlaylistContains: o.SkipPlaylistContains,
		SkipUserMails:        o.SkipUserMails,
		StorageDir:           o.StorageDir,
		DescriptionLocation:  o.DescriptionLocation,
	})

	return &Module{built: b, svc: svc, ports: Ports{Classifier: svc}}
}

// MountRoutes mounts POST /events
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { evhttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }
