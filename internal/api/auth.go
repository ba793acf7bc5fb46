package api

import (
	"context"
	"strings"
)

// MinPasswordLength matches the backend's signup constraint; checked
// client-side so the user hears about it before a round trip.
const MinPasswordLength = 6

// SignupRequest carries the fields for account registration. The
// confirmation field never leaves the client.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// Validate enforces the pre-network checks. It must run before any request
// is issued; a failure here means the backend was never contacted.
func (r SignupRequest) Validate() error {
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Message: "Passwords do not match"}
	}
	if len(r.Password) < MinPasswordLength {
		return &ValidationError{Message: "Password must be at least 6 characters"}
	}
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Message: "Username is required"}
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup registers a new account and returns the issued token. On success
// the caller is responsible for persisting the token and user record via
// the session store.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var tok TokenResponse
	if err := c.request(ctx, "POST", "/api/auth/signup", req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login authenticates existing credentials and returns the issued token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	body := loginRequest{Username: strings.TrimSpace(username), Password: password}
	var tok TokenResponse
	if err := c.request(ctx, "POST", "/api/auth/login", body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the authenticated user's record. Fails with ErrUnauthenticated
// (wrapped in the returned error) when no valid token is held.
func (c *Client) Me(ctx context.Context) (*UserRecord, error) {
	var user UserRecord
	if err := c.request(ctx, "GET", "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
