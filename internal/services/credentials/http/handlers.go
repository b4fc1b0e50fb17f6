// Package http provides http transport for the OAuth consent round trip
package http

import (
	stdhttp "net/http"

	"recordsync/internal/modkit/httpkit"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/services/credentials/domain"
)

// Register mounts the consent endpoints on the given router
func Register(r httpkit.Router, m domain.Manager) {
	h := &handlers{m: m}

	// consent redirect guarded by the route uuid
	httpkit.GetQuery[domain.AuthorizeQuery](r, "/oauth2", h.authorize)

	// provider callback
	httpkit.GetQuery[domain.CallbackQuery](r, "/oauth2callback", h.callback)
}

type handlers struct{ m domain.Manager }

// swagger:route GET /oauth2 Credentials oauthAuthorize
// @Summary Start the OAuth consent flow
// @Tags Credentials
// @Produce json
// @Param uuid query string true "Deployment route uuid"
// @Param redirect query string false "false returns the url instead of redirecting"
// @Success 302 "redirect to consent"
// @Success 200 {object} domain.AuthorizeResponse "consent url"
// @Router /oauth2 [get]
func (h *handlers) authorize(_ *stdhttp.Request, in domain.AuthorizeQuery) (any, error) {
	if err := h.m.VerifyRouteUUID(in.UUID); err != nil {
		return nil, err
	}
	url := h.m.AuthorizationURL()
	if in.Redirect == "false" {
		return domain.AuthorizeResponse{URL: url}, nil
	}
	return httpkit.Redirect(url), nil
}

// swagger:route GET /oauth2callback Credentials oauthCallback
// @Summary OAuth provider callback
// @Tags Credentials
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "Correlation state"
// @Success 200 {object} domain.Message "ok"
// @Router /oauth2callback [get]
func (h *handlers) callback(r *stdhttp.Request, in domain.CallbackQuery) (any, error) {
	if in.Code == "" {
		return nil, perr.WithField(perr.Validationf("Not found oauth code"), "code")
	}
	if in.State == "" {
		return nil, perr.WithField(perr.Validationf("Not found oauth state"), "state")
	}
	if err := h.m.VerifyState(in.State); err != nil {
		return nil, err
	}
	if err := h.m.ExchangeCode(r.Context(), in.Code); err != nil {
		return nil, err
	}
	return domain.Message{Message: "All done. Close this tab"}, nil
}
