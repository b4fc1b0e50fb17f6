// Package modkit provides module wiring and core deps
package modkit

import (
	"recordsync/internal/modkit/repokit"
	"recordsync/internal/platform/config"
	"recordsync/internal/platform/logger"
)

// Deps holds core dependencies passed to modules and workers
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}
