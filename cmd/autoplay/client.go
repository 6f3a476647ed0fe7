package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/mcp-training/minesweeper/game/engine"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

// Client plays one session at a time over the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

// do sends body as JSON and decodes a 2xx response into result. Error
// responses are returned as errors carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
			Code  int    `json:"code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// CreateSession opens a new session on configID, or the server default when empty
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var body any
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) action(ctx context.Context, name string, body any) (*engine.GameState, error) {
	var result service.ActionResult
	path := fmt.Sprintf("/api/sessions/%s/%s", c.sessionID, name)
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return result.GameState, nil
}

func (c *Client) Start(ctx context.Context) (*engine.GameState, error) {
	return c.action(ctx, "start", nil)
}

func (c *Client) Reveal(ctx context.Context, x, y int) (*engine.GameState, error) {
	return c.action(ctx, "reveal", engine.Position{X: x, Y: y})
}

func (c *Client) Mark(ctx context.Context, x, y int) (*engine.GameState, error) {
	return c.action(ctx, "mark", engine.Position{X: x, Y: y})
}

// Delete removes the session from the server
func (c *Client) Delete(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+c.sessionID, nil, nil)
}
