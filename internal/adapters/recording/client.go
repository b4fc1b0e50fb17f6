// Package recording downloads recording media from the meeting provider
package recording

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 2 * time.Hour
	defaultUA        = "recordsync-download"
	defaultMaxRetry  = 3
	defaultRetryBase = time.Second
	defaultRPS       = 1
)

// Options configures the Client
type Options struct {
	UserAgent string

	// Timeout bounds one whole download including the body
	Timeout time.Duration

	// RPS limits request starts across all workers; Burst defaults to 1
	RPS   float64
	Burst int

	// Retry config for transport errors and transient statuses
	MaxRetries int
	RetryBase  time.Duration
}

// Client streams recordings to local files
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		log:     *logger.Named("recording"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Download fetches url with a bearer token and writes the body to dst
// the body lands in a temp file next to dst and is renamed into place on success
func (c *Client) Download(ctx context.Context, url, token, dst string) (int64, error) {
	if url == "" {
		return 0, perr.InvalidArgf("recording: empty download url")
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "recording: create %s", dir)
	}

	resp, err := c.open(ctx, url, token)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".part-*")
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "recording: create temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, perr.Wrapf(err, perr.ErrorCodeUnavailable, "recording: stream body")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "recording: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "recording: close temp file")
	}
	if err := os.Rename(tmpName, dst); err != nil {
		cleanup()
		return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "recording: move into place")
	}

	c.log.Info().Str("path", dst).Int64("bytes", n).Msg("recording downloaded")
	return n, nil
}

// open issues the GET with retries and returns a 2xx response
func (c *Client) open(ctx context.Context, url, token string) (*http.Response, error) {
	attempts := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "recording: rate limiter")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "recording: new request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil || !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "recording: request failed")
			}
			if err := c.retry(ctx, attempts, "transport error"); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		c.log.Debug().
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("recording http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case transient(resp.StatusCode) && c.shouldRetry(attempts):
			_ = drainAndClose(resp.Body)
			if err := c.retry(ctx, attempts, "transient status"); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
		}
	}
}

func (c *Client) retry(ctx context.Context, attempt int, why string) error {
	back := c.backoff(attempt)
	c.log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg("recording " + why + " retrying")
	if err := c.sleep(ctx, back); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "recording: retry interrupted")
	}
	return nil
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		d = 30 * time.Second
	}
	return d
}

func transient(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
