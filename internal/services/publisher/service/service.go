// Package service implements the quota aware publishing client
package service

import (
	"context"
	"io"
	"os"
	"sync"

	yt "recordsync/internal/adapters/youtube"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"
	jobs "recordsync/internal/services/jobs/domain"
	"recordsync/internal/services/publisher/domain"
	quota "recordsync/internal/services/quota/domain"
)

const remoteURLPrefix = "https://youtu.be/"

// Options configures the publisher
type Options struct {
	// ChannelID scopes the playlist listing; empty lists the authorized account
	ChannelID string
}

// Svc implements domain.Publisher over a Remote and the shared governor
type Svc struct {
	remote yt.Remote
	quota  quota.Governor
	store  jobs.PlaylistStore
	opts   Options
	log    logger.Logger
	open   func(name string) (io.ReadCloser, error)

	mu     sync.Mutex
	warmed bool
	cache  map[string]string
}

var _ domain.Publisher = (*Svc)(nil)

// New constructs a publisher with an empty playlist cache
func New(remote yt.Remote, gov quota.Governor, store jobs.PlaylistStore, opts Options) *Svc {
	if remote == nil || gov == nil || store == nil {
		panic("publisher.Service requires a remote, a governor and a playlist store")
	}
	return &Svc{
		remote: remote,
		quota:  gov,
		store:  store,
		opts:   opts,
		log:    *logger.Named("publisher"),
		open:   func(name string) (io.ReadCloser, error) { return os.Open(name) },
		cache:  map[string]string{},
	}
}

// Available is always true for a bound publisher
func (s *Svc) Available() bool { return true }

// RemoteURL is the share url of a video
func (s *Svc) RemoteURL(videoID string) string { return remoteURLPrefix + videoID }

// EnsurePlaylistCacheWarm seeds the cache from the table then pages the remote listing
// a list cost is paid before every page
func (s *Svc) EnsurePlaylistCacheWarm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warmed {
		return nil
	}

	seed, err := s.store.Playlists(ctx)
	if err != nil {
		return err
	}
	for title, id := range seed {
		s.cache[title] = id
	}

	token := ""
	pages := 0
	for {
		if err := s.pay(ctx, quota.OpList); err != nil {
			return err
		}
		page, err := s.remote.ListPlaylists(ctx, s.opts.ChannelID, token)
		if err != nil {
			return mapRemote(err)
		}
		pages++
		for _, p := range page.Items {
			if p.Title == "" || p.ID == "" {
				continue
			}
			s.cache[p.Title] = p.ID
			if err := s.store.UpsertPlaylist(ctx, p.Title, p.ID); err != nil {
				return err
			}
		}
		token = page.NextPageToken
		if token == "" {
			break
		}
	}

	s.warmed = true
	s.log.Info().Int("pages", pages).Int("playlists", len(s.cache)).Msg("playlist cache warm")
	return nil
}

// HasQuotaForPreflight checks one list call
func (s *Svc) HasQuotaForPreflight(ctx context.Context) (bool, error) {
	return s.quota.Check(ctx, quota.OpList)
}

// HasQuotaForVideo checks upload and add-item, plus create for an uncached title
func (s *Svc) HasQuotaForVideo(ctx context.Context, playlistTitle string) (bool, error) {
	ops := []quota.Op{quota.OpVideoUpload, quota.OpPlaylistAddItem}
	if !s.cached(playlistTitle) {
		ops = append(ops, quota.OpPlaylistCreate)
	}
	return s.quota.Check(ctx, ops...)
}

// HasQuotaForPlaylistStep checks add-item, plus create for an uncached title
func (s *Svc) HasQuotaForPlaylistStep(ctx context.Context, playlistTitle string) (bool, error) {
	ops := []quota.Op{quota.OpPlaylistAddItem}
	if !s.cached(playlistTitle) {
		ops = append(ops, quota.OpPlaylistCreate)
	}
	return s.quota.Check(ctx, ops...)
}

// UploadVideo pays the upload cost and streams the local file
func (s *Svc) UploadVideo(ctx context.Context, in domain.UploadInput) (string, error) {
	if err := s.pay(ctx, quota.OpVideoUpload); err != nil {
		return "", err
	}
	f, err := s.open(in.LocalFilePath)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeNotFound, "publisher: open %s", in.LocalFilePath)
	}
	defer func() { _ = f.Close() }()

	id, err := s.remote.UploadVideo(ctx, yt.VideoInput{
		Title:       in.Title,
		Description: in.Description,
		Media:       f,
	})
	if err != nil {
		return "", mapRemote(err)
	}
	s.log.Info().Str("video_id", id).Str("title", in.Title).Msg("video uploaded")
	return id, nil
}

// InsertToPlaylist creates the playlist when unknown then adds the video
func (s *Svc) InsertToPlaylist(ctx context.Context, videoID, playlistTitle string) error {
	playlistID, err := s.playlistID(ctx, playlistTitle)
	if err != nil {
		return err
	}
	if err := s.pay(ctx, quota.OpPlaylistAddItem); err != nil {
		return err
	}
	if err := s.remote.AddPlaylistItem(ctx, playlistID, videoID); err != nil {
		return mapRemote(err)
	}
	return nil
}

func (s *Svc) playlistID(ctx context.Context, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.cache[title]; ok {
		return id, nil
	}
	if err := s.pay(ctx, quota.OpPlaylistCreate); err != nil {
		return "", err
	}
	id, err := s.remote.CreatePlaylist(ctx, title)
	if err != nil {
		return "", mapRemote(err)
	}
	s.cache[title] = id
	if err := s.store.UpsertPlaylist(ctx, title, id); err != nil {
		// the remote playlist exists; keep using the cached id
		s.log.Error().Err(err).Str("title", title).Msg("persist playlist failed")
	}
	s.log.Info().Str("title", title).Str("playlist_id", id).Msg("playlist created")
	return id, nil
}

func (s *Svc) cached(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[title]
	return ok
}

func (s *Svc) pay(ctx context.Context, op quota.Op) error {
	ok, err := s.quota.Pay(ctx, op)
	if err != nil {
		return err
	}
	if !ok {
		return perr.WithOp(domain.ErrQuotaExhausted, string(op))
	}
	return nil
}

// mapRemote turns a provider quota refusal into the quota signal
func mapRemote(err error) error {
	if yt.IsQuota(err) {
		return perr.Wrap(err, perr.ErrorCodeTooManyRequests, "publisher: remote quota exhausted")
	}
	return err
}
