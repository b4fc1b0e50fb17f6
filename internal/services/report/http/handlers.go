// Package http provides the report endpoint
package http

import (
	stdhttp "net/http"

	"recordsync/internal/modkit/httpkit"
	"recordsync/internal/services/report/domain"
	"recordsync/internal/services/report/service"
)

// Register mounts the report endpoint on the given router
func Register(r httpkit.Router, rep domain.Reporter) {
	h := &handlers{rep: rep}
	httpkit.GetQuery[domain.Query](r, "/", h.report)
}

type handlers struct{ rep domain.Reporter }

var contentTypes = map[string]string{
	domain.FormatJSON: "application/json; charset=utf-8",
	domain.FormatTSV:  "text/tab-separated-values; charset=utf-8",
	domain.FormatHTML: "text/html; charset=utf-8",
}

// swagger:route GET /report Report reportGet
// @Summary Recording report
// @Tags Report
// @Produce json
// @Produce text/tab-separated-values
// @Produce text/html
// @Param uuid query string true "Deployment route uuid"
// @Param format query string false "json, tsv or html" Enums(json, tsv, html)
// @Param asFile query bool false "serve as an attachment"
// @Param from query string false "first day, yyyy-mm-dd, default today minus 7 days"
// @Param to query string false "last day, yyyy-mm-dd, default today"
// @Success 200 {array} object "flattened rows"
// @Failure 400 {object} httpkit.Envelope
// @Failure 403 {object} httpkit.Envelope
// @Router /report [get]
func (h *handlers) report(r *stdhttp.Request, q domain.Query) (any, error) {
	if err := h.rep.Authorize(q.UUID); err != nil {
		return nil, err
	}
	w, err := h.rep.Resolve(q)
	if err != nil {
		return nil, err
	}
	rows, err := h.rep.Rows(r.Context(), w)
	if err != nil {
		return nil, err
	}

	format := q.Format
	if format == "" {
		format = domain.FormatJSON
	}
	if format == domain.FormatJSON && !q.AsFile {
		return rows, nil
	}

	var body []byte
	switch format {
	case domain.FormatTSV:
		body = service.RenderTSV(rows)
	case domain.FormatHTML:
		if body, err = service.RenderHTML(rows); err != nil {
			return nil, err
		}
	default:
		if body, err = service.RenderJSON(rows); err != nil {
			return nil, err
		}
	}

	if q.AsFile {
		name := h.rep.Day(w.From) + "_" + h.rep.Day(w.To) + "." + format
		return httpkit.Attachment(contentTypes[format], name, body), nil
	}
	return httpkit.Response{Status: stdhttp.StatusOK, Raw: body, ContentType: contentTypes[format]}, nil
}
