// @title         recordsync API
// @version       0.1.0
// @description   Recording webhook intake, OAuth consent and the publishing report
// @BasePath      /api/v1

package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "time/tzdata"

	"recordsync/internal/modkit/repokit"
	"recordsync/internal/platform/alert"
	"recordsync/internal/platform/config"
	"recordsync/internal/platform/logger"
	phttp "recordsync/internal/platform/net/http"
	"recordsync/internal/platform/net/middleware"
	"recordsync/internal/platform/store"
	"recordsync/internal/platform/store/migrate"

	"recordsync/internal/services/api"
)

const drainTimeout = 30 * time.Second

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	if err := alert.Init(alert.FromConfig(root)); err != nil {
		l.Error().Err(err).Msg("alert init failed, continuing without it")
	}
	defer alert.Flush(5 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := store.PGFromConfig(root)
	st, err := store.Open(ctx, store.Config{AppName: "recordsync", PG: pgCfg}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)
	if pgCfg.AutoMigrate {
		applied, err := migrate.Apply(ctx, st.PG)
		if err != nil {
			l.Panic().Err(err).Msg("migrations failed")
		}
		l.Info().Strs("applied", applied).Msg("migrations done")
	}

	// the listener reads root HOST and PORT
	srv := phttp.NewServer(root)
	srv.Router().Use(middleware.Heartbeat("/health"))

	rt := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	if err := rt.Credentials.Load(ctx); err != nil {
		l.Error().Err(err).Msg("stored credential not loaded, publishing waits for consent")
	}

	var wg sync.WaitGroup
	for _, w := range rt.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log := logger.Named(w.Name)
			log.Info().Msg("worker started")
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("worker stopped")
				alert.Capture(ctx, err, map[string]string{"component": w.Name})
				return
			}
			log.Info().Msg("worker stopped")
		}()
	}

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
		stop()
	}

	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := rt.Classifier.Drain(drainCtx); err != nil {
		l.Warn().Err(err).Msg("pending job creation not drained")
	}
	l.Info().Msg("bye")
}
