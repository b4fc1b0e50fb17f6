package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "recordsync/internal/platform/errors"

	"google.golang.org/api/googleapi"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Options{HTTP: srv.Client(), Endpoint: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresHTTPClient(t *testing.T) {
	if _, err := New(context.Background(), Options{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestListPlaylists_Pages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/playlists") || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("channelId") != "UC1" || q.Get("maxResults") != "50" {
			t.Errorf("query=%v", q)
		}
		if q.Get("pageToken") == "" {
			writeJSON(w, 200, map[string]any{
				"nextPageToken": "p2",
				"items":         []any{map[string]any{"id": "PL1", "snippet": map[string]any{"title": "Go"}}},
			})
			return
		}
		writeJSON(w, 200, map[string]any{
			"items": []any{map[string]any{"id": "PL2", "snippet": map[string]any{"title": "Rust"}}},
		})
	})

	p1, err := c.ListPlaylists(context.Background(), "UC1", "")
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if p1.NextPageToken != "p2" || len(p1.Items) != 1 || p1.Items[0] != (Playlist{ID: "PL1", Title: "Go"}) {
		t.Fatalf("page 1=%+v", p1)
	}
	p2, err := c.ListPlaylists(context.Background(), "UC1", "p2")
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if p2.NextPageToken != "" || p2.Items[0].Title != "Rust" {
		t.Fatalf("page 2=%+v", p2)
	}
}

func TestListPlaylists_MineWithoutChannel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mine") != "true" {
			t.Errorf("expected mine=true, got %v", r.URL.Query())
		}
		writeJSON(w, 200, map[string]any{"items": []any{}})
	})
	if _, err := c.ListPlaylists(context.Background(), "", ""); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestCreatePlaylist_Unlisted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Snippet struct{ Title string } `json:"snippet"`
			Status  struct {
				PrivacyStatus string `json:"privacyStatus"`
			} `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Snippet.Title != "Go" || body.Status.PrivacyStatus != "unlisted" {
			t.Errorf("body=%+v", body)
		}
		writeJSON(w, 200, map[string]any{"id": "PLnew"})
	})
	id, err := c.CreatePlaylist(context.Background(), "Go")
	if err != nil || id != "PLnew" {
		t.Fatalf("id=%q err=%v", id, err)
	}
}

func TestAddPlaylistItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"videoId":"v1"`) || !strings.Contains(string(raw), `"kind":"youtube#video"`) {
			t.Errorf("body=%s", raw)
		}
		writeJSON(w, 200, map[string]any{"id": "item"})
	})
	if err := c.AddPlaylistItem(context.Background(), "PL1", "v1"); err != nil {
		t.Fatalf("add item: %v", err)
	}
}

func TestUploadVideo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/videos") || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("notifySubscribers") != "false" {
			t.Errorf("query=%v", r.URL.Query())
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), "media-bytes") {
			t.Errorf("media not streamed")
		}
		writeJSON(w, 200, map[string]any{"id": "vid1"})
	})
	id, err := c.UploadVideo(context.Background(), VideoInput{
		Title: "t", Description: "d", Media: strings.NewReader("media-bytes"),
	})
	if err != nil || id != "vid1" {
		t.Fatalf("id=%q err=%v", id, err)
	}
}

func TestUploadVideo_NeedsMedia(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	if _, err := c.UploadVideo(context.Background(), VideoInput{Title: "t"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMineChannelIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"items": []any{map[string]any{"id": "UC1"}, map[string]any{"id": "UC2"}}})
	})
	ids, err := c.MineChannelIDs(context.Background())
	if err != nil || len(ids) != 2 || ids[1] != "UC2" {
		t.Fatalf("ids=%v err=%v", ids, err)
	}
}

func TestQuotaErrorsAreClassified(t *testing.T) {
	for _, reason := range []string{"quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded"} {
		t.Run(reason, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusForbidden, map[string]any{"error": map[string]any{
					"code":    403,
					"message": "nope",
					"errors":  []any{map[string]any{"reason": reason, "message": "nope"}},
				}})
			})
			_, err := c.CreatePlaylist(context.Background(), "Go")
			if !IsQuota(err) {
				t.Fatalf("expected quota error, got %v", err)
			}
		})
	}
}

func TestOtherErrorsAreNotQuota(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{
			"code":    400,
			"message": "bad",
			"errors":  []any{map[string]any{"reason": "invalidTitle"}},
		}})
	})
	err := c.AddPlaylistItem(context.Background(), "PL", "v")
	if err == nil || IsQuota(err) {
		t.Fatalf("expected generic error, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	q := classify("op", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "x"}, {Reason: "quotaExceeded"}}})
	var qe *QuotaError
	if !errors.As(q, &qe) || qe.Reason != "quotaExceeded" || qe.Op != "op" {
		t.Fatalf("got %v", q)
	}
	if !strings.Contains(qe.Error(), "quota exhausted") {
		t.Fatalf("message=%q", qe.Error())
	}

	transport := classify("op", fmt.Errorf("dial tcp: refused"))
	if IsQuota(transport) || !perr.IsCode(transport, perr.ErrorCodeUnavailable) {
		t.Fatalf("transport=%v", transport)
	}
}
