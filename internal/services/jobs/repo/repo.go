// Package repo provides the Postgres implementation of the job store
package repo

import (
	"recordsync/internal/modkit/repokit"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/services/jobs/domain"
)

// Repo is the full persistence surface; services depend on the narrower domain ports
type Repo interface {
	domain.EventStore
	domain.JobStore
	domain.SettingsStore
	domain.PlaylistStore
}

type (
	// PG is a Postgres implementation of the job store
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// dbErr keeps not found as is and maps everything else through the pg classifier
func dbErr(err error, msg string) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	return perr.FromPostgres(err, msg)
}
