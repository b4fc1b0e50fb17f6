package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "recordsync/internal/platform/errors"
)

type createReq struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"min=1"`
}

type reportQuery struct {
	Format string `query:"format" validate:"omitempty,oneof=json tsv html"`
	AsFile bool   `query:"asFile"`
	From   string `query:"from" validate:"required,datetime=2006-01-02"`
	Limit  int    `query:"limit"`
}

func TestParseJSON_OK(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","count":2}`))
	got, err := ParseJSON[createReq](r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		code perr.ErrorCode
	}{
		{"unknown field", `{"name":"a","count":1,"x":1}`, perr.ErrorCodeJSON},
		{"trailing", `{"name":"a","count":1} {}`, perr.ErrorCodeJSON},
		{"empty", ``, perr.ErrorCodeJSON},
		{"broken", `{"name":`, perr.ErrorCodeJSON},
		{"required", `{"count":1}`, perr.ErrorCodeValidation},
		{"min", `{"name":"a","count":0}`, perr.ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			_, err := ParseJSON[createReq](r)
			if err == nil {
				t.Fatalf("expected error")
			}
			if c := perr.CodeOf(err); c != tc.code {
				t.Fatalf("code=%v want %v (%v)", c, tc.code, err)
			}
		})
	}
}

func TestParseJSON_ValidationFieldUsesJSONName(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":1}`))
	_, err := ParseJSON[createReq](r)
	e, ok := perr.As(err)
	if !ok {
		t.Fatalf("expected perr.Error, got %T", err)
	}
	if e.Field() != "name" {
		t.Fatalf("field=%q", e.Field())
	}
}

func TestParseJSON_EmptyBodyOnGet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	got, err := ParseJSON[createReq](r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != (createReq{}) {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

func TestReadBody_TooLarge(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 11)))
	if _, err := ReadBody(r, 10); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("expected json error, got %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 10)))
	raw, err := ReadBody(r, 10)
	if err != nil || len(raw) != 10 {
		t.Fatalf("raw=%d err=%v", len(raw), err)
	}
}

func TestDecodeJSON_AllowUnknown(t *testing.T) {
	o := DefaultJSONOptions()
	o.DisallowUnknown = false
	got, err := DecodeJSON[createReq]([]byte(`{"name":"a","count":1,"extra":{"k":1}}`), o)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Name != "a" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?format=tsv&asFile&from=2024-01-02&limit=5", nil)
	got, err := ParseQuery[reportQuery](r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := reportQuery{Format: "tsv", AsFile: true, From: "2024-01-02", Limit: 5}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestParseQuery_Errors(t *testing.T) {
	cases := map[string]string{
		"bad bool":   "/?from=2024-01-02&asFile=maybe",
		"bad int":    "/?from=2024-01-02&limit=x",
		"bad date":   "/?from=2024-13-40",
		"missing":    "/",
		"bad format": "/?from=2024-01-02&format=xml",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if _, err := ParseQuery[reportQuery](r); !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseQuery_NonStruct(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ParseQuery[int](r); err == nil {
		t.Fatalf("expected error for non-struct target")
	}
}
