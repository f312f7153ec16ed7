// Package session holds the operator's login state for the lifetime of the
// console process and persists the token pair between invocations, the way
// the dashboard kept them in per-tab session storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/api"
	"github.com/spec-kit/helpdesk-console/internal/config"
	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/pkg/util"
)

// ErrNotAuthenticated means no stored login is available.
var ErrNotAuthenticated = errors.New("not logged in")

// Credentials is what gets persisted to the credentials file.
type Credentials struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Operator     domain.Operator `json:"operador"`
}

// Session implements api.TokenSource and caches the operator profile.
type Session struct {
	mu     sync.Mutex
	cfg    config.SessionConfig
	client *api.Client
	logger *zap.Logger
	creds  Credentials
	loaded bool
}

// New builds a session bound to the client; the caller wires the session
// back into the client as its token source.
func New(cfg config.SessionConfig, client *api.Client, logger *zap.Logger) *Session {
	return &Session{cfg: cfg, client: client, logger: logger}
}

// Load reads persisted credentials. A missing file is not an error; the
// session just stays unauthenticated.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.cfg.CredentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		s.logger.Warn("discarding unreadable credentials file", zap.Error(err))
		return nil
	}
	s.creds = creds
	s.loaded = creds.AccessToken != ""
	return nil
}

// LoggedIn reports whether credentials are present.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Login authenticates against the backend and persists the result.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.Operator, error) {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.creds = Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Operator:     result.Operator,
	}
	s.loaded = true
	err = s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	op := result.Operator
	return &op, nil
}

// Logout discards credentials in memory and on disk.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.loaded = false
	if err := os.Remove(s.cfg.CredentialsFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// AccessToken implements api.TokenSource.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken
}

// Refresh implements api.TokenSource: exchange the refresh token for a new
// access token and persist it.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.creds.RefreshToken
	s.mu.Unlock()
	if refreshToken == "" {
		return util.NewUnauthorized("no refresh token, log in again")
	}

	token, err := s.client.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.creds.AccessToken = token
	err = s.saveLocked()
	s.mu.Unlock()
	return err
}

// Operator returns the cached profile stored at login time.
func (s *Session) Operator() (*domain.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNotAuthenticated
	}
	op := s.creds.Operator
	return &op, nil
}

// RefreshProfile re-fetches the profile from /operadores/me and caches it.
// The dashboard did this lazily, the first time role scoping was needed.
func (s *Session) RefreshProfile(ctx context.Context) (*domain.Operator, error) {
	if !s.LoggedIn() {
		return nil, ErrNotAuthenticated
	}
	op, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.creds.Operator = *op
	saveErr := s.saveLocked()
	s.mu.Unlock()
	if saveErr != nil {
		s.logger.Warn("could not persist refreshed profile", zap.Error(saveErr))
	}
	return op, nil
}

// Actor reduces the cached profile to a policy actor. A profile missing its
// operator id falls back to the token's subject claim.
func (s *Session) Actor() (domain.Actor, error) {
	op, err := s.Operator()
	if err != nil {
		return domain.Actor{}, err
	}
	actor := op.ActorView()
	if actor.OperatorID == 0 {
		actor.OperatorID = tokenSubject(s.AccessToken())
	}
	return actor, nil
}

// EnsureFresh refreshes the access token up front when it is already
// expired, saving the first request the 401 round trip.
func (s *Session) EnsureFresh(ctx context.Context) error {
	s.mu.Lock()
	token := s.creds.AccessToken
	s.mu.Unlock()
	if token == "" {
		return ErrNotAuthenticated
	}
	if !tokenExpired(token) {
		return nil
	}
	s.logger.Debug("access token expired, refreshing")
	return s.Refresh(ctx)
}

func (s *Session) saveLocked() error {
	dir := filepath.Dir(s.cfg.CredentialsFile)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.cfg.CredentialsFile, data, 0o600)
}
