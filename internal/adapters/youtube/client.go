// Package youtube is the YouTube Data API v3 transport used by the publisher
package youtube

import (
	"context"
	"io"
	"net/http"
	"time"

	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const (
	privacyUnlisted = "unlisted"
	kindVideo       = "youtube#video"
	pageSize        = 50
)

// Playlist is a remote playlist title and id
type Playlist struct {
	ID    string
	Title string
}

// PlaylistPage is one page of a playlist listing
type PlaylistPage struct {
	Items         []Playlist
	NextPageToken string
}

// VideoInput describes an upload; Media is streamed as the request body
type VideoInput struct {
	Title       string
	Description string
	Media       io.Reader
}

// Remote is the subset of the video API the publisher needs
type Remote interface {
	ListPlaylists(ctx context.Context, channelID, pageToken string) (PlaylistPage, error)
	CreatePlaylist(ctx context.Context, title string) (string, error)
	AddPlaylistItem(ctx context.Context, playlistID, videoID string) error
	UploadVideo(ctx context.Context, in VideoInput) (string, error)
	MineChannelIDs(ctx context.Context) ([]string, error)
}

// Options configures the Client
type Options struct {
	// HTTP carries the OAuth token source; required
	HTTP *http.Client

	// Endpoint overrides the API base url, used by tests
	Endpoint string
}

// Client implements Remote over the generated youtube/v3 service
type Client struct {
	svc *yt.Service
	log logger.Logger
	now func() time.Time
}

// New builds a Client bound to the authorized http client
func New(ctx context.Context, o Options) (*Client, error) {
	if o.HTTP == nil {
		return nil, perr.InvalidArgf("youtube: http client is required")
	}
	opts := []option.ClientOption{option.WithHTTPClient(o.HTTP)}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "youtube: create service")
	}
	return &Client{svc: svc, log: *logger.Named("youtube"), now: time.Now}, nil
}

// ListPlaylists pages through playlists of channelID, or of the authorized account when empty
func (c *Client) ListPlaylists(ctx context.Context, channelID, pageToken string) (PlaylistPage, error) {
	call := c.svc.Playlists.List([]string{"id", "snippet"}).MaxResults(pageSize).Context(ctx)
	if channelID != "" {
		call = call.ChannelId(channelID)
	} else {
		call = call.Mine(true)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	start := c.now()
	resp, err := call.Do()
	c.trace("playlists.list", start, err)
	if err != nil {
		return PlaylistPage{}, classify("playlists.list", err)
	}

	page := PlaylistPage{NextPageToken: resp.NextPageToken}
	for _, it := range resp.Items {
		if it == nil || it.Snippet == nil {
			continue
		}
		page.Items = append(page.Items, Playlist{ID: it.Id, Title: it.Snippet.Title})
	}
	return page, nil
}

// CreatePlaylist creates an unlisted playlist and returns its id
func (c *Client) CreatePlaylist(ctx context.Context, title string) (string, error) {
	pl := &yt.Playlist{
		Snippet: &yt.PlaylistSnippet{Title: title},
		Status:  &yt.PlaylistStatus{PrivacyStatus: privacyUnlisted},
	}
	start := c.now()
	resp, err := c.svc.Playlists.Insert([]string{"snippet", "status"}, pl).Context(ctx).Do()
	c.trace("playlists.insert", start, err)
	if err != nil {
		return "", classify("playlists.insert", err)
	}
	return resp.Id, nil
}

// AddPlaylistItem appends a video to a playlist
func (c *Client) AddPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	item := &yt.PlaylistItem{
		Snippet: &yt.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &yt.ResourceId{Kind: kindVideo, VideoId: videoID},
		},
	}
	start := c.now()
	_, err := c.svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	c.trace("playlistItems.insert", start, err)
	if err != nil {
		return classify("playlistItems.insert", err)
	}
	return nil
}

// UploadVideo streams in.Media as an unlisted video without notifying subscribers
func (c *Client) UploadVideo(ctx context.Context, in VideoInput) (string, error) {
	if in.Media == nil {
		return "", perr.InvalidArgf("youtube: upload needs a media body")
	}
	v := &yt.Video{
		Snippet: &yt.VideoSnippet{Title: in.Title, Description: in.Description},
		Status:  &yt.VideoStatus{PrivacyStatus: privacyUnlisted},
	}
	start := c.now()
	resp, err := c.svc.Videos.Insert([]string{"snippet", "status"}, v).
		NotifySubscribers(false).
		Media(in.Media).
		Context(ctx).
		Do()
	c.trace("videos.insert", start, err)
	if err != nil {
		return "", classify("videos.insert", err)
	}
	return resp.Id, nil
}

// MineChannelIDs lists the channels owned by the authorized account
func (c *Client) MineChannelIDs(ctx context.Context) ([]string, error) {
	start := c.now()
	resp, err := c.svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	c.trace("channels.list", start, err)
	if err != nil {
		return nil, classify("channels.list", err)
	}
	ids := make([]string, 0, len(resp.Items))
	for _, ch := range resp.Items {
		if ch != nil {
			ids = append(ids, ch.Id)
		}
	}
	return ids, nil
}

func (c *Client) trace(op string, start time.Time, err error) {
	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("op", op).Dur("latency", c.now().Sub(start)).Msg("youtube call")
}
