package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/you/smart-dobi/internal/domain"
	"github.com/you/smart-dobi/internal/repository"
)

// AuthService consumes an already-verified identity from the external
// OAuth exchange and manages the server-side session store. It never
// performs OAuth itself.
type AuthService struct {
	users       *repository.UserRepo
	exchangeURL string
	sessionTTL  time.Duration
	client      *http.Client
	log         zerolog.Logger
}

func NewAuthService(users *repository.UserRepo, exchangeURL string, sessionTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		exchangeURL: exchangeURL,
		sessionTTL:  sessionTTL,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

type exchangePayload struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      *string `json:"picture"`
	SessionToken string  `json:"session_token"`
}

// ExchangeSession trades a provider session id for a user plus a stored
// session. Non-200 from the provider means the caller's session id was
// bad; a transport failure means the provider itself is down.
func (s *AuthService) ExchangeSession(ctx context.Context, sessionID string) (*domain.User, *domain.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.exchangeURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Msg("identity provider unreachable")
		return nil, nil, domain.ErrUpstream
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, domain.ErrUnauthorized
	}

	var payload exchangePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.log.Error().Err(err).Msg("bad identity provider payload")
		return nil, nil, domain.ErrUpstream
	}

	user, err := s.users.UpsertByEmail(ctx, payload.Email, payload.Name, payload.Picture)
	if err != nil {
		return nil, nil, err
	}

	session := &domain.Session{
		SessionToken: payload.SessionToken,
		UserID:       user.UserID,
		ExpiresAt:    time.Now().UTC().Add(s.sessionTTL),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.SaveSession(ctx, session); err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// CurrentUser resolves a bearer token to its user. Expired sessions are
// deleted on lookup.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.users.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.users.DeleteSession(ctx, token)
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.ByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.users.DeleteSession(ctx, token)
}
