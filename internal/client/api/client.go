// Package api is the HTTP/WebSocket client for the relay. Every protected
// call mints a fresh single-use token right before the request; tokens are
// never cached, because the server burns each token id on first sight.
package api

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sealpost/internal/token"
)

// Client talks to one relay server on behalf of one identity.
type Client struct {
	baseURL  string
	http     *http.Client
	tokenTTL time.Duration

	email    string
	signPriv ed25519.PrivateKey
}

func New(baseURL string, tokenTTL time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		tokenTTL: tokenTTL,
	}
}

// SetIdentity installs the signing identity used for protected calls.
func (c *Client) SetIdentity(email string, signPriv ed25519.PrivateKey) {
	c.email = email
	c.signPriv = signPriv
}

// ClearIdentity drops the signing identity (logout).
func (c *Client) ClearIdentity() {
	c.email = ""
	c.signPriv = nil
}

// Mint signs a fresh single-use token for the given intent. rcptID is only
// set on channel-open tokens.
func (c *Client) Mint(act, rcptID string) (string, error) {
	if c.signPriv == nil {
		return "", fmt.Errorf("not logged in")
	}
	now := time.Now().Unix()
	return token.Sign(token.Claims{
		Subject:   c.email,
		Act:       act,
		IssuedAt:  now,
		ExpiresAt: now + int64(c.tokenTTL.Seconds()),
		TokenID:   uuid.NewString(),
		RcptID:    rcptID,
	}, c.email, c.signPriv)
}

// APIError is a non-2xx answer from the relay.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

func (c *Client) do(ctx context.Context, method, path string, body any, act string, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if act != "" {
		compact, err := c.Mint(act, "")
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+compact)
		req.Header.Set("X-User-Email", c.email)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(data, &er)
		return &APIError{Status: resp.StatusCode, Detail: er.Detail}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Health probes the relay.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

// Register creates an identity. No token is needed; possession of the keys
// is proven on every later call.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/register", req, "", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login fetches the full identity record, including the sealed master.
func (c *Client) Login(ctx context.Context) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, "/login", nil, token.ActLogin, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Users lists all registered identities (public projections).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, token.ActLogin, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Send submits a sealed envelope for relay.
func (c *Client) Send(ctx context.Context, env Envelope) error {
	return c.do(ctx, http.MethodPost, "/messages", env, token.ActSend, nil)
}

// Fetch drains the caller's inbox. The returned envelopes are gone from
// the server.
func (c *Client) Fetch(ctx context.Context, rcptID string) ([]Envelope, error) {
	var envs []Envelope
	if err := c.do(ctx, http.MethodGet, "/inbox?rcpt_id="+rcptID, nil, token.ActFetch, &envs); err != nil {
		return nil, err
	}
	return envs, nil
}
