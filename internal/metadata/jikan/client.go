// Package jikan is a small client for the Jikan v4 REST API, an unofficial
// MyAnimeList mirror. Only the list endpoints used to build the catalog are
// covered.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nimelist/nimelist-server/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Jikan v4 endpoint.
	DefaultBaseURL = "https://api.jikan.moe/v4"

	// Jikan allows 3 requests per second; the burst lets the three catalog
	// requests go out together.
	defaultRPS   = 3.0
	defaultBurst = 3

	defaultTimeout = 10 * time.Second

	// MaxLimit is the largest page size Jikan accepts.
	MaxLimit = 25

	maxBodySize = 8 << 20
)

// Options configures a Client. Zero values use the defaults.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
	Logger         *slog.Logger
	HTTPClient     *http.Client
}

// Client is a rate-limited Jikan API client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
	baseURL *url.URL
}

// New creates a client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = defaultRPS
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		http:    httpClient,
		limiter: ratelimit.New(opts.RequestsPerSec, defaultBurst),
		logger:  opts.Logger,
		baseURL: base,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// TopAnime fetches the highest ranked anime.
func (c *Client) TopAnime(ctx context.Context, limit int) ([]Anime, error) {
	return fetchList[Anime](ctx, c, "topAnime", "/top/anime", limit)
}

// SeasonNow fetches anime airing in the current season.
func (c *Client) SeasonNow(ctx context.Context, limit int) ([]Anime, error) {
	return fetchList[Anime](ctx, c, "seasonNow", "/seasons/now", limit)
}

// TopCharacters fetches the most favorited characters.
func (c *Client) TopCharacters(ctx context.Context, limit int) ([]Character, error) {
	return fetchList[Character](ctx, c, "topCharacters", "/top/characters", limit)
}

func fetchList[T any](ctx context.Context, c *Client, op, path string, limit int) ([]T, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(limit)))

	body, status, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, &Error{Op: op, Path: path, Status: status, Err: err}
	}

	var resp ListResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: op, Path: path, Status: status, Err: fmt.Errorf("%w: %v", ErrBadResponse, err)}
	}
	if resp.Data == nil {
		return nil, &Error{Op: op, Path: path, Status: status, Err: fmt.Errorf("%w: missing data array", ErrBadResponse)}
	}
	return resp.Data, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// doRequest executes a GET with rate limiting and maps the status code.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx, c.baseURL.Host); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nimelist/1.0")

	c.logger.Debug("jikan request", "path", path, "query", u.RawQuery)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, resp.StatusCode, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resp.StatusCode, ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		return nil, resp.StatusCode, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, resp.StatusCode, ErrServer
	default:
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
