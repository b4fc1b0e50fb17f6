// Package domain defines the publishing capability consumed by the upload scheduler
package domain

import (
	"context"

	perr "recordsync/internal/platform/errors"
)

var (
	// ErrQuotaExhausted is the local or remote budget refusal
	ErrQuotaExhausted = perr.New(perr.ErrorCodeTooManyRequests, "quota exhausted")

	// ErrUnavailable means no credential has been authorized yet
	ErrUnavailable = perr.New(perr.ErrorCodeUnavailable, "publishing credential not available")
)

// IsQuotaExhausted reports whether err is the quota signal
func IsQuotaExhausted(err error) bool { return perr.IsCode(err, perr.ErrorCodeTooManyRequests) }

// UploadInput is one video upload request
type UploadInput struct {
	Title         string
	Description   string
	LocalFilePath string
}

// Publisher publishes local videos into per-title playlists
type Publisher interface {
	// Available is false for the placeholder used before authorization
	Available() bool

	EnsurePlaylistCacheWarm(ctx context.Context) error
	HasQuotaForPreflight(ctx context.Context) (bool, error)
	HasQuotaForVideo(ctx context.Context, playlistTitle string) (bool, error)
	HasQuotaForPlaylistStep(ctx context.Context, playlistTitle string) (bool, error)

	// UploadVideo returns the remote video id
	UploadVideo(ctx context.Context, in UploadInput) (string, error)
	InsertToPlaylist(ctx context.Context, videoID, playlistTitle string) error
	RemoteURL(videoID string) string
}

type unavailable struct{}

// Unavailable is the Publisher handed out while no credential is stored
var Unavailable Publisher = unavailable{}

func (unavailable) Available() bool                               { return false }
func (unavailable) EnsurePlaylistCacheWarm(context.Context) error { return ErrUnavailable }
func (unavailable) HasQuotaForPreflight(context.Context) (bool, error) {
	return false, ErrUnavailable
}
func (unavailable) HasQuotaForVideo(context.Context, string) (bool, error) {
	return false, ErrUnavailable
}
func (unavailable) HasQuotaForPlaylistStep(context.Context, string) (bool, error) {
	return false, ErrUnavailable
}
func (unavailable) UploadVideo(context.Context, UploadInput) (string, error) {
	return "", ErrUnavailable
}
func (unavailable) InsertToPlaylist(context.Context, string, string) error { return ErrUnavailable }
func (unavailable) RemoteURL(string) string                               { return "" }
