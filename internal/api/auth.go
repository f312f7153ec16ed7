package api

import (
	"context"
	"net/http"

	"github.com/spec-kit/helpdesk-console/internal/domain"
)

// LoginResult carries the token pair and operator profile returned by the
// backend on a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Operator     domain.Operator
}

type loginEnvelope struct {
	apiStatus
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Operator     domain.Operator `json:"operador"`
}

// Login authenticates with email and password. It is the one call made
// without a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var env loginEnvelope
	body := map[string]string{"email": email, "password": password}
	if err := c.doPublic(ctx, http.MethodPost, "/auth/login", body, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "login failed")
	}
	return &LoginResult{
		AccessToken:  env.AccessToken,
		RefreshToken: env.RefreshToken,
		Operator:     env.Operator,
	}, nil
}

type refreshEnvelope struct {
	apiStatus
	AccessToken string `json:"access_token"`
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// The refresh token rides as the bearer, matching the backend contract.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var env refreshEnvelope
	if err := c.doBearer(ctx, http.MethodPost, "/auth/refresh", refreshToken, &env); err != nil {
		return "", err
	}
	if !env.Success || env.AccessToken == "" {
		return "", envelopeError(env.apiStatus, "token refresh rejected")
	}
	return env.AccessToken, nil
}

type meEnvelope struct {
	apiStatus
	Operator domain.Operator `json:"operador"`
}

// Me fetches the current operator profile.
func (c *Client) Me(ctx context.Context) (*domain.Operator, error) {
	var env meEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/operadores/me", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not load profile")
	}
	return &env.Operator, nil
}
