// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	metahttp "recordsync/internal/services/meta/http"
	publisher "recordsync/internal/services/publisher/domain"
	quota "recordsync/internal/services/quota/domain"
)

// Ports are the optional probes injected with modkit.WithPorts
type Ports struct {
	Publishers interface{ Publisher() publisher.Publisher }
	Governor   quota.Governor
}

// credential asks the current publisher on every probe since consent can arrive at any time
type credential struct {
	src interface{ Publisher() publisher.Publisher }
}

func (c credential) Available() bool { return c.src.Publisher().Available() }

// Module serves /meta
type Module struct {
	built modkit.Built
	hd    metahttp.Deps
}

// New constructs a meta module, missing ports make their checks report skipped
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	hd := metahttp.Deps{
		ServiceName: "recordsync",
		StartedAt:   time.Now(),
	}
	if deps.PG != nil {
		hd.PG = deps.PG
	}
	if p, ok := b.Ports.(Ports); ok {
		if p.Publishers != nil {
			hd.Credential = credential{src: p.Publishers}
		}
		if p.Governor != nil {
			hd.Budget = p.Governor
		}
	}

	return &Module{built: b, hd: hd}
}

// MountRoutes mounts /meta/ready, /meta/version and /meta/service
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.hd) })
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports exposes nothing, meta only reads other modules
func (m *Module) Ports() any { return nil }
