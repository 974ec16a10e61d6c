// Package upcitemdb implements the UPCitemdb generic product vendor
// adapter, the cascade's last resort before manual entry.
package upcitemdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
)

const (
	defaultBaseURL = "https://api.upcitemdb.com/prod/trial/lookup"
	defaultTimeout = 5 * time.Second

	// The trial endpoint allows ~6 requests per minute.
	defaultRPS   = 0.1
	defaultBurst = 3
)

// Client is a rate-limited UPCitemdb API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// New creates a UPCitemdb client. An empty API key uses the keyless trial
// endpoint; a paid key is sent as the user_key header.
func New(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// Source implements lookup.Client.
func (c *Client) Source() domain.Source {
	return domain.SourceUPCItemDB
}

type rawResponse struct {
	Code  string    `json:"code"`
	Items []rawItem `json:"items"`
}

type rawItem struct {
	Title string `json:"title"`
	Brand string `json:"brand"`
}

// Lookup implements lookup.Client. A single attempt, no retries.
func (c *Client) Lookup(ctx context.Context, barcode string) (*lookup.Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query := url.Values{}
	query.Set("upc", barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("user_key", c.apiKey)
		req.Header.Set("key_type", "3scale")
	}

	c.logger.Debug("upcitemdb lookup", "barcode", barcode)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusNotFound:
		return nil, lookup.ErrNoMatch
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw rawResponse
	if err := json.UnmarshalRead(resp.Body, &raw); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	// UPCitemdb reports misses with code OK and an empty item list, or an
	// explicit INVALID_UPC code. Both mean "no result" here.
	if raw.Code != "OK" || len(raw.Items) == 0 {
		return nil, lookup.ErrNoMatch
	}

	item := raw.Items[0]
	return &lookup.Product{
		Name:   item.Title,
		Brand:  item.Brand,
		Source: domain.SourceUPCItemDB,
	}, nil
}
