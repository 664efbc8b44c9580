// Package api implements the REST contract the SDK depends on. It is a thin
// JSON client: no retries, no caching, no interpretation of the bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the auth backend. The zero value is not usable; construct
// with NewClient. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client rooted at baseURL. A nil httpClient falls back
// to http.DefaultClient; timeouts are the transport's business, not ours.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Login exchanges credentials for a profile and token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account; the response is shaped like a login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser validates the bearer token and returns its profile.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile replaces the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, token string, req ProfileRequest) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/profile", token, req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// OAuthExchange trades a provider assertion for a session. provider is the
// path segment ("google" or "apple"). May fail with ErrRoleRequired or
// ErrEmailRequired, which are continuations rather than terminal failures.
func (c *Client) OAuthExchange(ctx context.Context, provider string, req ExchangeRequest) (*AuthResponse, error) {
	var out AuthResponse
	path := fmt.Sprintf("/auth/oauth/%s", provider)
	if err := c.do(ctx, http.MethodPost, path, "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset asks the backend to send a reset code. The backend
// always reports success to avoid account enumeration.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResponse, error) {
	var out ResetRequestResponse
	if err := c.do(ctx, http.MethodPost, "/auth/password-reset/request", "", resetRequestBody{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPasswordReset submits the code and the new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	var out struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodPost, "/auth/password-reset/confirm", "",
		resetConfirmBody{Email: email, Code: code, NewPassword: newPassword}, &out)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrNetwork, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		// Best effort: non-JSON error bodies still classify by status.
		_ = json.Unmarshal(raw, &envelope)
		return newError(resp.StatusCode, envelope.Code, envelope.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}
