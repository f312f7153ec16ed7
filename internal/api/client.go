// Package api implements the typed HTTP client for the helpdesk REST
// backend. The backend is the authority for every action; this client only
// fetches state and submits requests on behalf of the logged-in operator.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/config"
	"github.com/spec-kit/helpdesk-console/pkg/util"
)

// TokenSource supplies the bearer token for authenticated requests and
// refreshes it when the backend answers 401.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// Client talks to the helpdesk backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// New constructs a client for the configured backend.
func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		logger:  logger,
	}
}

// SetTokenSource wires the session after construction. Requests made
// without a token source go out unauthenticated (login, refresh).
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// apiStatus is the common part of every backend response envelope.
type apiStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Mensaje string `json:"mensaje"`
}

// errMessage returns the first populated error field of the envelope.
func (s apiStatus) errMessage() string {
	switch {
	case s.Error != "":
		return s.Error
	case s.Mensaje != "":
		return s.Mensaje
	default:
		return s.Message
	}
}

// doJSON performs one JSON round trip. On a 401 with a token source
// attached it refreshes once and retries, mirroring the browser client's
// behavior; a second 401 surfaces as UNAUTHORIZED.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, data, err := c.roundTrip(ctx, method, path, query, body, true)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Refresh(ctx); err != nil {
			return util.NewUnauthorized("session expired, log in again")
		}
		resp, data, err = c.roundTrip(ctx, method, path, query, body, true)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return util.NewUnauthorized("session expired, log in again")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var status apiStatus
		_ = json.Unmarshal(data, &status)
		return util.NewAPIError(status.errMessage(), resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return util.NewDecodeError(err)
		}
	}
	return nil
}

// doPublic performs a round trip without attaching the bearer token.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	resp, data, err := c.roundTrip(ctx, method, path, nil, body, false)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var status apiStatus
		_ = json.Unmarshal(data, &status)
		return util.NewAPIError(status.errMessage(), resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return util.NewDecodeError(err)
		}
	}
	return nil
}

// doBearer performs a round trip with an explicit bearer token instead of
// the token source. Used for the refresh call, where the refresh token
// itself is the credential.
func (c *Client) doBearer(ctx context.Context, method, path, bearer string, out any) error {
	resp, data, err := c.roundTripBearer(ctx, method, path, bearer)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var status apiStatus
		_ = json.Unmarshal(data, &status)
		return util.NewAPIError(status.errMessage(), resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return util.NewDecodeError(err)
		}
	}
	return nil
}

func (c *Client) roundTripBearer(ctx context.Context, method, path, bearer string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, util.NewConnectionError(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, util.NewConnectionError(err)
	}
	return resp, data, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any, authed bool) (*http.Response, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if authed && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, nil, util.NewConnectionError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, util.NewConnectionError(err)
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))

	return resp, data, nil
}

// envelopeError converts an unsuccessful envelope into a DomainError.
func envelopeError(status apiStatus, fallback string) error {
	msg := status.errMessage()
	if msg == "" {
		msg = fallback
	}
	return util.NewAPIError(msg, http.StatusOK)
}
