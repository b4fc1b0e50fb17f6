// Package service implements the OAuth credential manager
package service

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	yt "recordsync/internal/adapters/youtube"
	"recordsync/internal/platform/alert"
	perr "recordsync/internal/platform/errors"
	"recordsync/internal/platform/logger"
	"recordsync/internal/services/credentials/domain"
	jobs "recordsync/internal/services/jobs/domain"
	publisher "recordsync/internal/services/publisher/domain"
	pubsvc "recordsync/internal/services/publisher/service"
	quota "recordsync/internal/services/quota/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const refreshBuffer = 16

// scopes requested at consent
var scopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
}

// Config carries the OAuth client and the deployment secret
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RouteUUID    string

	// ChannelID, when set, is the only channel allowed to authorize
	ChannelID string

	// Endpoint defaults to the Google endpoint
	Endpoint oauth2.Endpoint
}

// Store is the persistence the manager and its publisher need
type Store interface {
	jobs.SettingsStore
	jobs.PlaylistStore
}

// Svc implements domain.Manager
type Svc struct {
	store  Store
	quota  quota.Governor
	cfg    Config
	oauth  *oauth2.Config
	events chan domain.TokenRefreshed
	log    logger.Logger

	// newRemote builds the video API client over an authorized http client
	newRemote func(ctx context.Context, c *http.Client) (yt.Remote, error)

	mu  sync.RWMutex
	pub publisher.Publisher
}

var _ domain.Manager = (*Svc)(nil)

// New constructs a manager with no credential loaded
func New(store Store, gov quota.Governor, cfg Config) *Svc {
	if store == nil || gov == nil {
		panic("credentials.Service requires a store and a governor")
	}
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = google.Endpoint
	}
	return &Svc{
		store: store,
		quota: gov,
		cfg:   cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     cfg.Endpoint,
		},
		events: make(chan domain.TokenRefreshed, refreshBuffer),
		log:    *logger.Named("credentials"),
		newRemote: func(ctx context.Context, c *http.Client) (yt.Remote, error) {
			return yt.New(ctx, yt.Options{HTTP: c})
		},
		pub: publisher.Unavailable,
	}
}

// AuthorizationURL is the consent url carrying the deployment state
func (s *Svc) AuthorizationURL() string {
	return s.oauth.AuthCodeURL(s.state(),
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (s *Svc) state() string {
	b, _ := json.Marshal(domain.State{UUID: s.cfg.RouteUUID})
	return string(b)
}

// VerifyRouteUUID compares uuid with the deployment secret
func (s *Svc) VerifyRouteUUID(uuid string) error {
	if uuid == "" {
		return perr.WithField(perr.Validationf("UUID is required"), "uuid")
	}
	if s.cfg.RouteUUID == "" || uuid != s.cfg.RouteUUID {
		return perr.WithField(perr.Validationf("Incorrect UUID"), "uuid")
	}
	return nil
}

// VerifyState decodes the callback state and checks its uuid
func (s *Svc) VerifyState(raw string) error {
	var st domain.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil || st.UUID == "" {
		return perr.WithField(perr.Validationf("Incorrect UUID"), "state")
	}
	if err := s.VerifyRouteUUID(st.UUID); err != nil {
		return perr.WithField(err, "state")
	}
	return nil
}

// Load binds a publisher to the persisted credential, if any
func (s *Svc) Load(ctx context.Context) error {
	raw, err := s.store.GetSetting(ctx, jobs.SettingCredential)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		s.log.Info().Msg("no credential stored, publishing disabled until authorization")
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := decodeToken(raw)
	if err != nil {
		return err
	}
	remote, err := s.remoteFor(tok)
	if err != nil {
		return err
	}
	s.setPublisher(remote)
	s.log.Info().Msg("credential loaded")
	return nil
}

// ExchangeCode trades an authorization code for tokens, persists them and rebinds the publisher
func (s *Svc) ExchangeCode(ctx context.Context, code string) error {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnauthorized, "credential: exchange code")
	}

	remote, err := s.remoteFor(tok)
	if err != nil {
		return err
	}
	if err := s.approve(ctx, remote); err != nil {
		return err
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "credential: encode token")
	}
	if err := s.store.PutSetting(ctx, jobs.SettingCredential, raw); err != nil {
		return err
	}

	s.setPublisher(remote)
	s.log.Info().Msg("credential authorized")
	return nil
}

// approve enforces the channel allow rule when one is configured
func (s *Svc) approve(ctx context.Context, remote yt.Remote) error {
	if s.cfg.ChannelID == "" {
		return nil
	}
	ok, err := s.quota.Pay(ctx, quota.OpList)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Warn().Msg("no quota left for channel check, skipping approval")
		return nil
	}
	ids, err := remote.MineChannelIDs(ctx)
	if yt.IsQuota(err) {
		s.log.Warn().Err(err).Msg("remote quota exhausted during channel check, skipping approval")
		if ferr := s.quota.ForceExhaust(ctx); ferr != nil {
			s.log.Error().Err(ferr).Msg("force exhaust quota failed")
		}
		return nil
	}
	if err != nil {
		return err
	}
	if !slices.Contains(ids, s.cfg.ChannelID) {
		return perr.Forbiddenf("account does not own channel %s", s.cfg.ChannelID)
	}
	return nil
}

// Publisher returns the current publishing capability
func (s *Svc) Publisher() publisher.Publisher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pub
}

// Run merges and persists refreshed tokens until ctx is done
func (s *Svc) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			if err := s.HandleRefresh(ctx, ev); err != nil {
				s.log.Error().Err(err).Msg("persist refreshed token failed")
				alert.Capture(ctx, err, map[string]string{"component": "credentials"})
			}
		}
	}
}

// HandleRefresh merges ev over the last persisted token set and persists the result
func (s *Svc) HandleRefresh(ctx context.Context, ev domain.TokenRefreshed) error {
	if ev.Token == nil {
		return nil
	}
	stored, err := s.store.GetSetting(ctx, jobs.SettingCredential)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	merged, err := mergeToken(stored, ev.Token)
	if err != nil {
		return err
	}
	if err := s.store.PutSetting(ctx, jobs.SettingCredential, merged); err != nil {
		return err
	}
	s.log.Info().Time("expiry", ev.Token.Expiry).Msg("refreshed token persisted")
	return nil
}

// remoteFor builds a video client whose token source outlives any request context
func (s *Svc) remoteFor(tok *oauth2.Token) (yt.Remote, error) {
	bg := context.Background()
	src := newNotifyingSource(s.oauth.TokenSource(bg, tok), tok.AccessToken, s.events)
	return s.newRemote(bg, oauth2.NewClient(bg, src))
}

func (s *Svc) setPublisher(remote yt.Remote) {
	pub := pubsvc.New(remote, s.quota, s.store, pubsvc.Options{ChannelID: s.cfg.ChannelID})
	s.mu.Lock()
	s.pub = pub
	s.mu.Unlock()
}
