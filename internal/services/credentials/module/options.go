package module

import (
	"strings"

	"recordsync/internal/platform/config"
)

// Options holds OAuth client settings read from the root env
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	ChannelID    string
	RouteUUID    string
}

// FromConfig reads GOOGLE_* keys plus ROUTE_UUID
// the redirect url defaults to DOMAIN + /api/v1/oauth2callback
func FromConfig(cfg config.Conf) Options {
	g := cfg.Prefix("GOOGLE_")
	domain := strings.TrimRight(cfg.MayString("DOMAIN", "http://localhost:4000"), "/")
	return Options{
		ClientID:     g.MustString("CLIENT_ID"),
		ClientSecret: g.MustString("CLIENT_SECRET"),
		RedirectURL:  g.MayString("REDIRECT_URL", domain+"/api/v1/oauth2callback"),
		ChannelID:    g.MayString("CHANNEL_ID", ""),
		RouteUUID:    cfg.MustString("ROUTE_UUID"),
	}
}
