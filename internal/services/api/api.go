// Package api composes the HTTP modules and the background workers
package api

import (
	"context"

	"recordsync/internal/platform/config"
	"recordsync/internal/platform/logger"
	phttp "recordsync/internal/platform/net/http"
	"recordsync/internal/platform/store"

	"recordsync/internal/modkit"
	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/modkit/module"
	"recordsync/internal/modkit/repokit"
	"recordsync/internal/modkit/swaggerkit"

	creddomain "recordsync/internal/services/credentials/domain"
	credmod "recordsync/internal/services/credentials/module"
	downloaddomain "recordsync/internal/services/download/domain"
	downloadmod "recordsync/internal/services/download/module"
	evdomain "recordsync/internal/services/events/domain"
	evmod "recordsync/internal/services/events/module"
	jobsrepo "recordsync/internal/services/jobs/repo"
	metamod "recordsync/internal/services/meta/module"
	quotasvc "recordsync/internal/services/quota/service"
	reportmod "recordsync/internal/services/report/module"
	retentiondomain "recordsync/internal/services/retention/domain"
	retentionmod "recordsync/internal/services/retention/module"
	uploaddomain "recordsync/internal/services/upload/domain"
	uploadmod "recordsync/internal/services/upload/module"

	"github.com/go-chi/chi/v5/middleware"
)

// Options are the API options
type Options struct {
	// Config is the root config, modules read their own prefixes from it
	Config         config.Conf
	Store          *store.Store
	EnableSwagger  bool
	EnableProfiler bool
}

// Worker is a named background loop started by the process
type Worker struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runtime is what the process needs after mounting: the long lived ports
type Runtime struct {
	Credentials creddomain.Manager
	Classifier  evdomain.Classifier
	Workers     []Worker
}

// Mount builds every module, mounts the HTTP ones and returns the runtime ports
func Mount(r phttp.Router, opt Options) Runtime {
	deps := modkit.Deps{
		Log: *logger.Named("api"),
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	// one governor shared by every publisher the credential manager builds
	gov := quotasvc.New(repokit.MustBind(jobsrepo.NewPG(), deps.PG), quotasvc.FromConfig(deps.Cfg))

	creds := credmod.New(deps, modkit.WithPorts(credmod.Ports{Governor: gov}))
	manager := module.MustPortsOf[creddomain.Manager](creds)

	// Zoom only ever posts JSON, anything else is refused before the handler decodes it
	events := evmod.New(deps, modkit.WithMiddlewares(middleware.AllowContentType("application/json")))
	report := reportmod.New(deps)
	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{Publishers: manager, Governor: gov}))

	download := downloadmod.New(deps, downloadmod.Options{})
	upload := uploadmod.New(deps, uploadmod.Requires{Publishers: manager, Governor: gov}, uploadmod.Options{})
	retention := retentionmod.New(deps, retentionmod.Options{})

	mods := []module.Module{meta, creds, events, report, download, upload, retention}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	return Runtime{
		Credentials: manager,
		Classifier:  module.MustPortsOf[evdomain.Classifier](events),
		Workers: []Worker{
			{Name: "credentials", Run: manager.Run},
			{Name: download.Name(), Run: module.MustPortsOf[downloaddomain.Scheduler](download).Run},
			{Name: upload.Name(), Run: module.MustPortsOf[uploaddomain.Scheduler](upload).Run},
			{Name: retention.Name(), Run: module.MustPortsOf[retentiondomain.Sweeper](retention).Run},
		},
	}
}
