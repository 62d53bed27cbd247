// Package broker talks to the third-party OAuth broker that turns a one-time
// session id (handed to the frontend after the OAuth redirect) into a user
// profile and a session token.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SessionIDHeader carries the one-time session id to the broker.
const SessionIDHeader = "X-Session-ID"

// ErrUnavailable covers every failure talking to the broker.
var ErrUnavailable = errors.New("authentication service unavailable")

// Profile is the broker's answer to a session exchange.
type Profile struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// Exchanger swaps a broker session id for a Profile.
type Exchanger interface {
	FetchSession(ctx context.Context, sessionID string) (*Profile, error)
}

// Client is an HTTP Exchanger. It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a Client for the broker session-data endpoint. The timeout
// bounds the whole exchange; the transport is traced with otelhttp.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("auth broker url is required")
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

var _ Exchanger = (*Client)(nil)

// FetchSession performs a single GET with no retries. Transport errors,
// non-2xx responses and malformed bodies all wrap ErrUnavailable.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set(SessionIDHeader, sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: broker returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if p.Email == "" || p.SessionToken == "" {
		return nil, fmt.Errorf("%w: incomplete profile", ErrUnavailable)
	}
	return &p, nil
}
