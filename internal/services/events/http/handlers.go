// Package http provides the webhook endpoint
package http

import (
	stdhttp "net/http"

	"recordsync/internal/modkit/httpkit"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/services/events/domain"
)

// Register mounts the webhook endpoint on the given router
func Register(r httpkit.Router, c domain.Classifier) {
	h := &handlers{c: c}
	httpkit.Post(r, "/", h.receive)
}

type handlers struct{ c domain.Classifier }

// the provider adds fields over time so unknown ones are tolerated
func bodyOptions() httpkit.JSONOptions {
	o := httpkit.DefaultJSONOptions()
	o.DisallowUnknown = false
	return o
}

// swagger:route POST /events Events eventsReceive
// @Summary Receive a recording webhook
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body domain.Body true "Webhook delivery"
// @Success 200 {object} domain.ValidationReply "url validation challenge, bare body"
// @Success 200 {object} domain.Reply "recording acknowledged"
// @Router /events [post]
func (h *handlers) receive(r *stdhttp.Request) (any, error) {
	body, raw, err := httpkit.BindRaw[domain.Body](r, bodyOptions())
	if err != nil {
		return nil, err
	}

	switch body.Event {
	case domain.EventURLValidation:
		reply, err := h.c.Validate(body.Payload.PlainToken)
		if err != nil {
			return nil, err
		}
		return httpkit.Bare(reply), nil
	case domain.EventRecordingComplete:
		return h.c.Record(r.Context(), body, raw)
	default:
		return nil, perr.WithField(perr.Validationf("Unknown event type"), "event")
	}
}
