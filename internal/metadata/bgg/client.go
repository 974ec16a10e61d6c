// Package bgg implements a BoardGameGeek XMLAPI2 client.
//
// BGG is the authoritative metadata source for the catalog: a barcode vendor
// supplies at best a title and a BGG id; everything else (players, playtime,
// categories, mechanics, cover art, description) comes from here. Responses
// are XML and are parsed structurally with encoding/xml rather than scraped.
package bgg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://boardgamegeek.com/xmlapi2"

	// BGG throttles aggressively; one request per second with a small
	// burst stays under its limiter.
	defaultRPS   = 1.0
	defaultBurst = 2

	defaultTimeout = 30 * time.Second

	// maxResponseSize caps response reads; thing documents for popular
	// games run tens of KB, never megabytes.
	maxResponseSize = 4 * 1024 * 1024
)

// Client is a rate-limited BoardGameGeek API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	token   string
	baseURL string
	logger  *slog.Logger
}

// New creates a new BGG client. The token is optional; when set it is sent
// as a bearer token on every request.
func New(token string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		token:   token,
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	// No persistent resources to close; kept for lifecycle symmetry.
}

// doRequest executes a GET against the BGG API with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", "Shelfline/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("bgg request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusAccepted:
		// BGG queues heavy requests and asks the caller to retry later.
		return nil, ErrQueued
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
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
