package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "recordsync/internal/platform/errors"
	phttp "recordsync/internal/platform/net/http"
	"recordsync/internal/services/events/domain"

	"github.com/go-chi/chi/v5"
)

type fakeClassifier struct {
	raw   json.RawMessage
	body  domain.Body
	reply domain.Reply
	err   error
}

func (f *fakeClassifier) Validate(tok string) (domain.ValidationReply, error) {
	if tok == "" {
		return domain.ValidationReply{}, perr.Validationf("plainToken is required")
	}
	return domain.ValidationReply{PlainToken: tok, EncryptedToken: "signed-" + tok}, nil
}

func (f *fakeClassifier) Reasons(domain.Object) []string { return nil }

func (f *fakeClassifier) Record(_ context.Context, b domain.Body, raw json.RawMessage) (domain.Reply, error) {
	f.body, f.raw = b, raw
	return f.reply, f.err
}

func (f *fakeClassifier) Drain(context.Context) error { return nil }

func post(t *testing.T, c domain.Classifier, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := chi.NewRouter()
	phttp.AdaptChi(mux).Route("/events", func(r phttp.Router) { Register(r, c) })
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodPost, "/events", strings.NewReader(body)))
	return rr
}

func TestValidationIsBare(t *testing.T) {
	rr := post(t, &fakeClassifier{}, `{"event":"endpoint.url_validation","event_ts":1,"payload":{"plainToken":"abc"}}`)
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if got["plainToken"] != "abc" || got["encryptedToken"] != "signed-abc" || len(got) != 2 {
		t.Fatalf("body=%v", got)
	}
}

func TestValidationEmptyToken(t *testing.T) {
	rr := post(t, &fakeClassifier{}, `{"event":"endpoint.url_validation","payload":{}}`)
	if rr.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestRecordingPassesRawBody(t *testing.T) {
	c := &fakeClassifier{reply: domain.Reply{Message: "All done", Params: struct{}{}}}
	body := `{"event":"recording.completed","download_token":"t","new_provider_field":1,"payload":{"object":{"topic":"a;b;c","duration":30}}}`

	rr := post(t, c, body)
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if string(c.raw) != body {
		t.Fatalf("raw=%s", c.raw)
	}
	if c.body.DownloadToken != "t" || c.body.Payload.Object.Duration != 30 {
		t.Fatalf("decoded=%+v", c.body)
	}
	var env phttp.Envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	if data, _ := env.Data.(map[string]any); data["message"] != "All done" {
		t.Fatalf("envelope=%+v", env)
	}
}

func TestRecordingStoreFailure(t *testing.T) {
	c := &fakeClassifier{err: perr.DBf("down")}
	rr := post(t, c, `{"event":"recording.completed","payload":{"object":{}}}`)
	if rr.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestUnknownAndMalformed(t *testing.T) {
	cases := map[string]string{
		"unknown event": `{"event":"meeting.started","payload":{}}`,
		"missing event": `{"payload":{}}`,
		"broken json":   `{"event":`,
		"empty":         ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := post(t, &fakeClassifier{}, body)
			if rr.Code != stdhttp.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
		})
	}

	rr := post(t, &fakeClassifier{}, `{"event":"meeting.started"}`)
	var env phttp.Envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	if env.Error != "Unknown event type" {
		t.Fatalf("error=%q", env.Error)
	}
}
