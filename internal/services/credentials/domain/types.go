// Package domain defines the credential manager ports and events
package domain

import (
	"context"
	"time"

	publisher "recordsync/internal/services/publisher/domain"

	"golang.org/x/oauth2"
)

// TokenRefreshed is emitted when the token source hands out a new access token
type TokenRefreshed struct {
	Token *oauth2.Token
	At    time.Time
}

// State is the correlation payload carried through the OAuth round trip
type State struct {
	UUID string `json:"uuid"`
}

// Manager owns the single OAuth credential and the publisher bound to it
type Manager interface {
	AuthorizationURL() string
	// VerifyState checks the callback state against the deployment secret
	VerifyState(raw string) error
	// VerifyRouteUUID checks a caller supplied uuid against the deployment secret
	VerifyRouteUUID(uuid string) error

	Load(ctx context.Context) error
	ExchangeCode(ctx context.Context, code string) error

	// Publisher returns publisher.Unavailable until a credential is stored
	Publisher() publisher.Publisher

	// Run consumes refresh events until ctx is done
	Run(ctx context.Context) error
	HandleRefresh(ctx context.Context, ev TokenRefreshed) error
}
