// Package sync keeps editor and overlay views eventually consistent:
// a remote session client with a fixed-interval poller, plus the
// URL-embedded snapshot used at overlay launch. The local mirror
// channel lives in localstore; the view composes all three.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"goalwidget/internal/widget"
)

// ErrSessionNotFound mirrors the service's 404.
var ErrSessionNotFound = errors.New("session not found")

// ClientOptions configures the session API client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Timeout    time.Duration
}

// Client talks to the remote session store. Failures are expected and
// non-fatal; callers degrade to local-only operation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient constructs a client with sane defaults.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: opts.BaseURL, httpClient: httpClient, log: opts.Logger}
}

type createResponse struct {
	SessionID string `json:"sessionId"`
}

// Create registers a new session holding state and returns its id.
func (c *Client) Create(ctx context.Context, state widget.State) (string, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create session: unexpected status %d", resp.StatusCode)
	}
	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	return out.SessionID, nil
}

// Fetch returns the remote state for a session id.
func (c *Client) Fetch(ctx context.Context, sessionID string) (*widget.State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?id="+sessionID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrSessionNotFound
	default:
		return nil, fmt.Errorf("fetch session: unexpected status %d", resp.StatusCode)
	}
	var state widget.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

// Push overwrites the remote blob for sessionID wholesale.
func (c *Client) Push(ctx context.Context, sessionID string, state widget.State) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"?id="+sessionID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push session: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push session: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
