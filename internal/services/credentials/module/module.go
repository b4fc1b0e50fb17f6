// Package module wires the credential manager and its consent routes using modkit
package module

import (
	modkit "recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/repokit"
	credhttp "recordsync/internal/services/credentials/http"
	credsvc "recordsync/internal/services/credentials/service"
	jobsrepo "recordsync/internal/services/jobs/repo"
)

// Module implements the credentials module
type Module struct {
	built modkit.Built
	ports Ports
	svc   *credsvc.Svc
}

// New constructs the credentials module, it requires an injected Governor port
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("credentials")}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Governor == nil {
		panic("credentials module requires a Governor port (from services/quota)")
	}

	o := FromConfig(deps.Cfg)
	svc := credsvc.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), injected.Governor, credsvc.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURL,
		RouteUUID:    o.RouteUUID,
		ChannelID:    o.ChannelID,
	})

	return &Module{
		built: b,
		svc:   svc,
		ports: Ports{Governor: injected.Governor, Manager: svc},
	}
}

// MountRoutes mounts the consent routes at the api root
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { credhttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }
