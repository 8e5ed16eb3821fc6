// Package client is the programmatic front end to a watchdeck server: an HTTP
// API client plus the add-form and list controllers built on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"watchdeck/models"
)

// Client talks to a watchdeck server. The cookie jar carries the session
// cookie issued at login, so one client instance represents one signed-in
// user.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}, nil
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login authenticates with the direct credential provider and stores the
// session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"user": email, "passwd": password}
	return c.do(ctx, http.MethodPost, "/auth/local/login", nil, body, nil)
}

// Logout drops the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/logout", nil, nil, nil)
}

// SyncUser mirrors the logged-in identity into the server's users table.
func (c *Client) SyncUser(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/api/user/sync", nil, nil, &u)
	return u, err
}

// RecordSession logs one login event for the current user.
func (c *Client) RecordSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/session", nil, nil, nil)
}

// Watchlist returns all of the current user's items.
func (c *Client) Watchlist(ctx context.Context) ([]models.WatchItem, error) {
	var items []models.WatchItem
	err := c.do(ctx, http.MethodGet, "/api/watchlist", nil, nil, &items)
	return items, err
}

// WatchlistItem returns a single owned item by id.
func (c *Client) WatchlistItem(ctx context.Context, id int64) (models.WatchItem, error) {
	var item models.WatchItem
	q := url.Values{"id": []string{strconv.FormatInt(id, 10)}}
	err := c.do(ctx, http.MethodGet, "/api/watchlist", q, nil, &item)
	return item, err
}

// CreateItem adds a new item to the current user's list.
func (c *Client) CreateItem(ctx context.Context, in models.WatchItemCreate) (models.WatchItem, error) {
	var item models.WatchItem
	err := c.do(ctx, http.MethodPost, "/api/watchlist", nil, in, &item)
	return item, err
}

// UpdateItem applies a partial update to an owned item.
func (c *Client) UpdateItem(ctx context.Context, in models.WatchItemUpdate) (models.WatchItem, error) {
	var item models.WatchItem
	err := c.do(ctx, http.MethodPut, "/api/watchlist", nil, in, &item)
	return item, err
}

// DeleteItem removes an owned item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	q := url.Values{"id": []string{strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodDelete, "/api/watchlist", q, nil, nil)
}

// Search proxies a catalog search through the server.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	q := url.Values{"query": []string{query}}
	err := c.do(ctx, http.MethodGet, "/api/tmdb/search", q, nil, &results)
	return results, err
}

// Details fetches the full metadata snapshot for one title.
func (c *Client) Details(ctx context.Context, tmdbID int64, mediaType models.MediaType) (*models.TmdbItemDetails, error) {
	var details models.TmdbItemDetails
	q := url.Values{
		"tmdbId": []string{strconv.FormatInt(tmdbID, 10)},
		"type":   []string{string(mediaType)},
	}
	if err := c.do(ctx, http.MethodGet, "/api/tmdb/details", q, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// AdminUsers returns the per-user aggregate stats; requires an admin session.
func (c *Client) AdminUsers(ctx context.Context) ([]models.AdminUserStats, error) {
	var stats []models.AdminUserStats
	err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &stats)
	return stats, err
}
