// Package catalog fetches candidate groups for a list from the backend
// catalog service.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/ratelimit"
)

const (
	defaultRPS     = 2.0
	defaultBurst   = 4
	defaultTimeout = 15 * time.Second

	// Bodies larger than this are rejected rather than parsed.
	maxBodySize = 8 << 20
)

// Client is a rate-limited catalog client. Requests are not retried.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	baseURL *url.URL
	logger  *slog.Logger
}

// New creates a client for the catalog rooted at baseURL. A zero timeout or
// rps falls back to the defaults.
func New(baseURL string, timeout time.Duration, rps float64, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if rps <= 0 {
		rps = defaultRPS
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: ratelimit.New(rps, defaultBurst),
		baseURL: u,
		logger:  logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// FetchGroups returns the candidate groups of listID, optionally narrowed to
// category.
func (c *Client) FetchGroups(ctx context.Context, listID, category string) ([]domain.Group, error) {
	if listID == "" {
		return nil, wrapError("fetchGroups", listID, ErrBadRequest)
	}

	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	body, err := c.doRequest(ctx, query, "lists", url.PathEscape(listID), "groups")
	if err != nil {
		return nil, wrapError("fetchGroups", listID, err)
	}

	groups, err := backlog.ParseGroups(body)
	if err != nil {
		return nil, wrapError("fetchGroups", listID, err)
	}

	c.logger.Debug("catalog groups fetched", "list_id", listID, "category", category, "groups", len(groups))
	return groups, nil
}

// doRequest executes a GET against the catalog with rate limiting keyed by
// host. Path segments must already be escaped.
func (c *Client) doRequest(ctx context.Context, query url.Values, segments ...string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, c.baseURL.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL.JoinPath(segments...)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "goat-sessions/1.0")

	c.logger.Debug("catalog request", "path", u.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response exceeds %d bytes", maxBodySize)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
