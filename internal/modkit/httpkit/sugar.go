package httpkit

import (
	"net/http"

	phttp "recordsync/internal/platform/net/http"
	"recordsync/internal/platform/net/http/bind"
)

// JSONOptions re-exports the binder options
type JSONOptions = bind.JSONOptions

// PostJSON mounts a JSON body handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...JSONOptions) {
	r.Post(path, phttp.JSONHandler(h, opts...))
}

// GetQuery mounts a handler whose input is bound from the url query
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, phttp.QueryHandler(h))
}

// Get registers a no-body handler and uses the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.JSONHandlerNoBody(h))
}

// Post registers a handler that reads the body itself
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, phttp.JSONHandlerNoBody(h))
}

// DefaultJSONOptions returns the binder defaults
func DefaultJSONOptions() JSONOptions { return bind.DefaultJSONOptions() }

// BindRaw reads the body once and decodes it into T, handing back the raw bytes as well
func BindRaw[T any](r *http.Request, o JSONOptions) (T, []byte, error) {
	var zero T
	raw, err := bind.ReadBody(r, o.MaxBytes)
	if err != nil {
		return zero, nil, err
	}
	v, err := bind.DecodeJSON[T](raw, o)
	if err != nil {
		return zero, nil, err
	}
	return v, raw, nil
}
