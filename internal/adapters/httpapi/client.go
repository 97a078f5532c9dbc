// Package httpapi is the client-side adapter for the session backend's
// HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
)

// Client talks to the session backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// Ensure Client implements ports.BackendClient.
var _ ports.BackendClient = (*Client)(nil)

// New returns a client for the backend at baseURL, e.g.
// "http://127.0.0.1:5001".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError is the backend's error body.
type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("backend error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("backend error (%d)", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CreateSession records a new planned session.
func (c *Client) CreateSession(ctx context.Context, title string, durationMinutes float64) (*domain.Session, error) {
	body := map[string]interface{}{
		"title":            title,
		"duration_minutes": durationMinutes,
	}
	var session domain.Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CompleteSession closes the session with the given id.
func (c *Client) CompleteSession(ctx context.Context, id string, payload domain.CompletionPayload) (*domain.Session, error) {
	var session domain.Session
	path := "/api/sessions/" + url.PathEscape(id) + "/complete"
	if err := c.do(ctx, http.MethodPost, path, payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the session with the given id.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	path := "/api/sessions/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SessionsByDate returns the sessions recorded on the given date.
func (c *Client) SessionsByDate(ctx context.Context, date string) ([]*domain.Session, error) {
	var sessions []*domain.Session
	path := "/api/sessions?date=" + url.QueryEscape(date)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DayAggregates returns the per-day summaries, newest first.
func (c *Client) DayAggregates(ctx context.Context) ([]domain.DayAggregate, error) {
	var aggregates []domain.DayAggregate
	if err := c.do(ctx, http.MethodGet, "/api/dates", nil, &aggregates); err != nil {
		return nil, err
	}
	return aggregates, nil
}

// Shutdown asks the backend process to stop gracefully.
func (c *Client) Shutdown(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/shutdown", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend error (%d)", resp.StatusCode)
	}
	return nil
}
