package repo

import (
	"context"
	"encoding/json"
	"time"

	"recordsync/internal/modkit/repokit"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/store"
	"recordsync/internal/services/jobs/domain"
)

const jobColumns = `
	id, event_id, load_source_state, load_source_error, publish_state,
	last_publish_action, publish_error, is_source_removed, data, created_at, updated_at`

func scanJob(r repokit.Row) (domain.Job, error) {
	var (
		j                   domain.Job
		load, publish, last string
		data                []byte
	)
	if err := r.Scan(
		&j.ID, &j.EventID, &load, &j.LoadSourceError, &publish,
		&last, &j.PublishError, &j.IsSourceRemoved, &data, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return domain.Job{}, err
	}
	j.LoadSourceState = domain.LoadState(load)
	j.PublishState = domain.PublishState(publish)
	j.LastPublishAction = domain.PublishAction(last)
	if err := json.Unmarshal(data, &j.Data); err != nil {
		return domain.Job{}, perr.Wrapf(err, perr.ErrorCodeDB, "job %d: decode data", j.ID)
	}
	return j, nil
}

// InsertJob creates a job in ready/ready
func (r *queries) InsertJob(ctx context.Context, eventID int64, data domain.JobData) (domain.Job, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return domain.Job{}, perr.Wrapf(err, perr.ErrorCodeJSON, "encode job data")
	}
	const sql = `
		INSERT INTO jobs (event_id, load_source_state, publish_state, data)
		VALUES ($1, 'ready', 'ready', $2)
		RETURNING ` + jobColumns
	j, err := scanJob(r.q.QueryRow(ctx, sql, eventID, raw))
	if err != nil {
		return domain.Job{}, dbErr(err, "insert job")
	}
	return j, nil
}

func (r *queries) list(ctx context.Context, sql string, args ...any) ([]domain.Job, error) {
	out, err := store.Many(ctx, r.q, scanJob, sql, args...)
	if err != nil {
		return nil, dbErr(err, "list")
	}
	return out, nil
}

// LoadReady lists jobs waiting for download
func (r *queries) LoadReady(ctx context.Context) ([]domain.Job, error) {
	return r.list(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE load_source_state = 'ready'
		ORDER BY created_at, id
	`)
}

// PublishReady lists downloaded jobs that may leave publish ready
func (r *queries) PublishReady(ctx context.Context) ([]domain.Job, error) {
	return r.list(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE load_source_state = 'success' AND publish_state = 'ready'
		ORDER BY created_at, id
	`)
}

// ForRetention lists published jobs past the retention cutoff that still hold a local file
func (r *queries) ForRetention(ctx context.Context, cutoff time.Time) ([]domain.Job, error) {
	return r.list(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE publish_state = 'success'
		  AND is_source_removed = false
		  AND created_at <= $1
		ORDER BY created_at, id
	`, cutoff)
}

// JobsByEventIDs lists jobs owned by any of ids
func (r *queries) JobsByEventIDs(ctx context.Context, ids []int64) ([]domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE event_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
}

// SaveLoad persists the download outcome
func (r *queries) SaveLoad(ctx context.Context, j domain.Job) error {
	const sql = `
		UPDATE jobs
		SET load_source_state = $2, load_source_error = $3, updated_at = now()
		WHERE id = $1
	`
	if err := store.ExecOne(ctx, r.q, sql, j.ID, string(j.LoadSourceState), j.LoadSourceError); err != nil {
		return dbErr(err, "save load")
	}
	return nil
}

// SavePublish persists the publish state, last action, error and data document
func (r *queries) SavePublish(ctx context.Context, j domain.Job) error {
	raw, err := json.Marshal(j.Data)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode job data")
	}
	const sql = `
		UPDATE jobs
		SET publish_state = $2, last_publish_action = $3, publish_error = $4, data = $5, updated_at = now()
		WHERE id = $1
	`
	err = store.ExecOne(ctx, r.q, sql,
		j.ID, string(j.PublishState), string(j.LastPublishAction), j.PublishError, raw)
	if err != nil {
		return dbErr(err, "save publish")
	}
	return nil
}

// MarkSourceRemoved records that the local media file is gone
func (r *queries) MarkSourceRemoved(ctx context.Context, id int64) error {
	const sql = `UPDATE jobs SET is_source_removed = true, updated_at = now() WHERE id = $1`
	if err := store.ExecOne(ctx, r.q, sql, id); err != nil {
		return dbErr(err, "mark source removed")
	}
	return nil
}

// Claim takes the lease when it is free, expired or already held by owner
func (r *queries) Claim(ctx context.Context, id int64, owner string, ttl time.Duration) (bool, error) {
	const sql = `
		UPDATE jobs
		SET leased_by = $2, lease_expires_at = now() + make_interval(secs => $3)
		WHERE id = $1 AND (leased_by IS NULL OR leased_by = $2 OR lease_expires_at < now())
	`
	n, err := store.Affected(ctx, r.q, sql, id, owner, ttl.Seconds())
	if err != nil {
		return false, dbErr(err, "claim")
	}
	return n == 1, nil
}

// Release drops the lease if owner still holds it
func (r *queries) Release(ctx context.Context, id int64, owner string) error {
	const sql = `
		UPDATE jobs
		SET leased_by = NULL, lease_expires_at = NULL
		WHERE id = $1 AND leased_by = $2
	`
	if _, err := store.Exec(ctx, r.q, sql, id, owner); err != nil {
		return dbErr(err, "release")
	}
	return nil
}

// ReclaimStale resets publishes interrupted by a crash so the next tick picks them up
func (r *queries) ReclaimStale(ctx context.Context) (int64, error) {
	const sql = `
		UPDATE jobs
		SET publish_state = 'ready', leased_by = NULL, lease_expires_at = NULL, updated_at = now()
		WHERE publish_state IN ('processing', 'unfinally')
		  AND lease_expires_at IS NOT NULL
		  AND lease_expires_at < now()
	`
	n, err := store.Affected(ctx, r.q, sql)
	if err != nil {
		return 0, dbErr(err, "reclaim stale")
	}
	return n, nil
}
