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

const eventColumns = `id, state, reason, data, created_at, updated_at`

func scanEvent(r repokit.Row) (domain.Event, error) {
	var (
		e     domain.Event
		state string
		data  []byte
	)
	if err := r.Scan(&e.ID, &state, &e.Reason, &data, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return domain.Event{}, err
	}
	e.State = domain.EventState(state)
	e.Data = json.RawMessage(data)
	return e, nil
}

// InsertEvent stores a classified webhook body
func (r *queries) InsertEvent(ctx context.Context, state domain.EventState, reason string, data json.RawMessage) (domain.Event, error) {
	const sql = `
		INSERT INTO events (state, reason, data)
		VALUES ($1, $2, $3)
		RETURNING ` + eventColumns
	e, err := scanEvent(r.q.QueryRow(ctx, sql, string(state), reason, []byte(data)))
	if err != nil {
		return domain.Event{}, dbErr(err, "insert event")
	}
	return e, nil
}

// MarkEventProcessed moves a ready event to processed
func (r *queries) MarkEventProcessed(ctx context.Context, id int64) error {
	const sql = `
		UPDATE events
		SET state = 'processed', updated_at = now()
		WHERE id = $1 AND state = 'ready'
	`
	if err := store.ExecOne(ctx, r.q, sql, id); err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return perr.NotFoundf("event %d is not ready", id)
		}
		return dbErr(err, "mark event processed")
	}
	return nil
}

// EventsBetween returns events created in [from, to)
func (r *queries) EventsBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	const sql = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id
	`
	out, err := store.Many(ctx, r.q, scanEvent, sql, from, to)
	if err != nil {
		return nil, dbErr(err, "events between")
	}
	return out, nil
}
