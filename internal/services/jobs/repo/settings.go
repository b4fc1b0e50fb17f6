package repo

import (
	"context"
	"encoding/json"

	"recordsync/internal/platform/store"
)

// GetSetting reads a singleton blob
func (r *queries) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	v, err := store.Scalar[[]byte](ctx, r.q, `SELECT value FROM settings WHERE key = $1`, key)
	if err != nil {
		return nil, dbErr(err, "get setting")
	}
	return json.RawMessage(v), nil
}

// PutSetting replaces a singleton blob
func (r *queries) PutSetting(ctx context.Context, key string, value json.RawMessage) error {
	const sql = `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := store.Exec(ctx, r.q, sql, key, []byte(value)); err != nil {
		return dbErr(err, "put setting")
	}
	return nil
}

// Playlists loads the persisted title to remote id cache
func (r *queries) Playlists(ctx context.Context) (map[string]string, error) {
	type pair struct{ title, id string }
	rows, err := store.Many(ctx, r.q, func(row store.Row) (pair, error) {
		var p pair
		err := row.Scan(&p.title, &p.id)
		return p, err
	}, `SELECT title, remote_id FROM playlists`)
	if err != nil {
		return nil, dbErr(err, "playlists")
	}
	out := make(map[string]string, len(rows))
	for _, p := range rows {
		out[p.title] = p.id
	}
	return out, nil
}

// UpsertPlaylist records a title to remote id pair
func (r *queries) UpsertPlaylist(ctx context.Context, title, remoteID string) error {
	const sql = `
		INSERT INTO playlists (title, remote_id)
		VALUES ($1, $2)
		ON CONFLICT (title) DO UPDATE SET remote_id = EXCLUDED.remote_id
	`
	if _, err := store.Exec(ctx, r.q, sql, title, remoteID); err != nil {
		return dbErr(err, "upsert playlist")
	}
	return nil
}
