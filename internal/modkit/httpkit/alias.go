// Package httpkit provides handler and routing helpers that alias the platform http package
// modules use these so they do not import internal/platform/net/http directly
package httpkit

import (
	phttp "recordsync/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Bare returns v as the whole JSON body, without the envelope
func Bare(v any) Response { return phttp.Bare(v) }

// Redirect returns a 302 to url
func Redirect(url string) Response { return phttp.Redirect(url) }

// Attachment returns body as a download named filename
func Attachment(contentType, filename string, body []byte) Response {
	return phttp.Attachment(contentType, filename, body)
}
