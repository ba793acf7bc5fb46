// Package api is the single point of contact with the formpilot backend.
// It owns the credential lifecycle on the wire (bearer attachment, 401
// handling) and uniform error translation; everything above it works with
// typed records and ordinary Go errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request. Polling and page loads are all
// short JSON exchanges; anything slower than this is effectively down.
const DefaultTimeout = 30 * time.Second

// CredentialSource provides the bearer token and accepts the forced wipe on
// a 401. *session.Store satisfies it.
type CredentialSource interface {
	Token() string
	Clear() error
}

// Client wraps authenticated HTTP requests to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  *zap.Logger

	// onUnauthenticated runs after a 401 has cleared local credentials.
	// The terminal analog of the browser's hard navigation to the landing
	// page: the app drops whatever it was doing and returns to login.
	onUnauthenticated func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client (tests, proxies).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a zap logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthenticatedHook registers the callback invoked after any 401.
func WithUnauthenticatedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthenticated = fn }
}

// NewClient creates a client against baseURL using creds for bearer tokens.
func NewClient(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// errorBody is the structured error shape the backend uses.
type errorBody struct {
	Detail string `json:"detail"`
}

// request performs one authenticated JSON exchange. Behavior on every call:
//  1. attaches `Authorization: Bearer <token>` when a token is present
//  2. on 401 to a request that carried a token, clears all local credentials
//     and fires the unauthenticated hook before returning the error. A 401
//     from an unauthenticated request (a wrong-password login) has no
//     session to end, so nothing is wiped and the hook stays quiet
//  3. on other non-2xx returns a *RequestError carrying the backend detail
//     message when present
//  4. an unparseable error body is treated as `Server error (<status>)`
//
// Transport failures propagate unmodified.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.creds.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.translateError(resp.StatusCode, data, token != "")
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// translateError maps a non-2xx status plus raw body to the error taxonomy.
// hadToken reports whether the failed request was authenticated; only then
// does a 401 end the local session.
func (c *Client) translateError(status int, data []byte, hadToken bool) error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		// Malformed bodies are tolerated: synthesize the generic detail.
		eb.Detail = fmt.Sprintf("Server error (%d)", status)
	}

	if status == http.StatusUnauthorized && hadToken {
		// Credential wipe happens regardless of which call triggered it.
		if err := c.creds.Clear(); err != nil {
			c.logger.Warn("failed to clear credentials after 401", zap.Error(err))
		}
		if c.onUnauthenticated != nil {
			c.onUnauthenticated()
		}
	}

	msg := eb.Detail
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", status)
	}
	return &RequestError{Status: status, Message: msg}
}
