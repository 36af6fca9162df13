package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin wrapper over the read-side HTTP API.
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

func (c *Client) Leaderboard(ctx context.Context, guildID string, tier, limit int) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("/v1/guilds/%s/leaderboard?tier=%d&limit=%d", url.PathEscape(guildID), tier, limit)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) UserRank(ctx context.Context, guildID, userID string, tier int) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("/v1/guilds/%s/rank/%s?tier=%d", url.PathEscape(guildID), url.PathEscape(userID), tier)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Shares(ctx context.Context, guildID, resource string, limit int) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("/v1/guilds/%s/shares?resource=%s&limit=%d",
		url.PathEscape(guildID), url.QueryEscape(resource), limit)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Totals(ctx context.Context, guildID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/guilds/"+url.PathEscape(guildID)+"/totals", nil, &out)
	return out, err
}

// Purchases queries the purchase ledger. Empty filter values are omitted from
// the query string; zero times mean an unbounded range.
func (c *Client) Purchases(ctx context.Context, guildID, role, resource string, from, to time.Time, limit int) (map[string]any, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	if resource != "" {
		q.Set("resource", resource)
	}
	if !from.IsZero() {
		q.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.RFC3339))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/guilds/" + url.PathEscape(guildID) + "/purchases"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, guildID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/guilds/"+url.PathEscape(guildID)+"/refresh", nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
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
