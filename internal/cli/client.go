// Package cli is the typed HTTP client the command-line tool uses against
// the read-only simulation API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Prices(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, "/v1/prices", &out)
	return out, err
}

func (c *Client) Sectors(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, "/v1/sectors", &out)
	return out, err
}

func (c *Client) Corporations(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, "/v1/corporations", &out)
	return out, err
}

// Statement fetches a freshly computed statement. periodHours <= 0 keeps the
// server default; latest switches to the last persisted turn result.
func (c *Client) Statement(ctx context.Context, corpID int64, periodHours float64, latest bool) (map[string]any, error) {
	path := fmt.Sprintf("/v1/corporations/%d/statement", corpID)
	switch {
	case latest:
		path += "?latest=1"
	case periodHours > 0:
		path += fmt.Sprintf("?period_hours=%g", periodHours)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, path, &out)
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, limit int) (map[string]any, error) {
	path := "/v1/leaderboard"
	if limit > 0 {
		path = fmt.Sprintf("/v1/leaderboard?limit=%d", limit)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, path, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
