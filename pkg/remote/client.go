// Package remote provides the HTTP client for the cragtrack backend.
//
// The backend stores per-user climb and session rows with upsert-by-id and
// delete-by-id semantics plus full-collection fetch. Every call requires an
// active identity; calls without one fail with ErrNotAuthenticated. All
// methods are safe for concurrent use.
package remote

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

	"github.com/cragtrack/cragtrack/pkg/climb"
	"github.com/cragtrack/cragtrack/pkg/identity"
	"github.com/cragtrack/cragtrack/pkg/session"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the backend (e.g. "https://api.cragtrack.io").
	BaseURL string

	// APIKey authenticates requests as a bearer token.
	APIKey string

	// HTTPClient is an optional custom HTTP client. If nil, a default
	// client with a 30-second timeout is used.
	HTTPClient *http.Client

	// Timeout applies to individual requests when HTTPClient is nil.
	// Defaults to 30 seconds.
	Timeout time.Duration
}

// Client is the HTTP implementation of the remote backend.
type Client struct {
	baseURL string
	apiKey  string
	auth    *identity.State
	client  *http.Client
}

// NewClient creates a Client from the given configuration.
// Returns an error if BaseURL or APIKey is empty.
func NewClient(cfg Config, auth *identity.State) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("remote: APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		auth:    auth,
		client:  httpClient,
	}, nil
}

// FetchClimbs returns the user's full remote climb collection.
func (c *Client) FetchClimbs(ctx context.Context) ([]climb.Climb, error) {
	var climbs []climb.Climb
	if err := c.do(ctx, http.MethodGet, "climbs", nil, &climbs); err != nil {
		return nil, err
	}
	return climbs, nil
}

// FetchSessions returns the user's full remote session collection.
func (c *Client) FetchSessions(ctx context.Context) ([]session.Session, error) {
	var sessions []session.Session
	if err := c.do(ctx, http.MethodGet, "sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpsertClimbs upserts climbs by id as a single batch.
func (c *Client) UpsertClimbs(ctx context.Context, climbs []climb.Climb) error {
	return c.do(ctx, http.MethodPut, "climbs", climbs, nil)
}

// UpsertSessions upserts session records by id as a single batch.
func (c *Client) UpsertSessions(ctx context.Context, sessions []session.Session) error {
	return c.do(ctx, http.MethodPut, "sessions", sessions, nil)
}

// DeleteClimb deletes a climb row by id. Deleting an unknown id succeeds.
func (c *Client) DeleteClimb(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "climbs/"+url.PathEscape(id), nil, nil)
}

// DeleteSession deletes a session row by id. Deleting an unknown id succeeds.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "sessions/"+url.PathEscape(id), nil, nil)
}

// do performs one request against a user-scoped resource path.
func (c *Client) do(ctx context.Context, method, resource string, body, out interface{}) error {
	id, ok := c.auth.Current()
	if !ok {
		return ErrNotAuthenticated
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s/%s",
		c.baseURL, url.PathEscape(id.UserID), resource)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("remote: failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: failed to decode response: %w", err)
	}

	return nil
}
