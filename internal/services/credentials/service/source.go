package service

import (
	"sync"
	"time"

	"recordsync/internal/platform/logger"
	"recordsync/internal/services/credentials/domain"

	"golang.org/x/oauth2"
)

// notifyingSource reports every new access token on events
type notifyingSource struct {
	base   oauth2.TokenSource
	events chan<- domain.TokenRefreshed
	log    logger.Logger
	now    func() time.Time

	mu   sync.Mutex
	last string
}

func newNotifyingSource(base oauth2.TokenSource, current string, events chan<- domain.TokenRefreshed) *notifyingSource {
	return &notifyingSource{
		base:   base,
		events: events,
		log:    *logger.Named("credentials"),
		now:    time.Now,
		last:   current,
	}
}

// Token implements oauth2.TokenSource
func (s *notifyingSource) Token() (*oauth2.Token, error) {
	t, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AccessToken == s.last {
		return t, nil
	}
	s.last = t.AccessToken
	select {
	case s.events <- domain.TokenRefreshed{Token: t, At: s.now()}:
	default:
		s.log.Warn().Msg("token refresh event dropped, channel full")
	}
	return t, nil
}
