// Package barcodelookup implements the Barcode Lookup generic product
// vendor adapter, the cascade's first fallback when GameUPC misses.
package barcodelookup

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
	defaultBaseURL = "https://api.barcodelookup.com/v3/products"
	defaultTimeout = 5 * time.Second

	// The free tier is throttled hard upstream; stay polite.
	defaultRPS   = 1.0
	defaultBurst = 2
)

// Client is a rate-limited Barcode Lookup API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// New creates a Barcode Lookup client. The API key travels as a query
// parameter, per the vendor's convention.
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
	return domain.SourceBarcodeLookup
}

type rawResponse struct {
	Products []rawProduct `json:"products"`
}

type rawProduct struct {
	Title string `json:"title"`
	Brand string `json:"brand"`
}

// Lookup implements lookup.Client. A single attempt, no retries.
func (c *Client) Lookup(ctx context.Context, barcode string) (*lookup.Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query := url.Values{}
	query.Set("barcode", barcode)
	query.Set("formatted", "y")
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("barcodelookup lookup", "barcode", barcode)

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

	if len(raw.Products) == 0 {
		return nil, lookup.ErrNoMatch
	}

	p := raw.Products[0]
	return &lookup.Product{
		Name:   p.Title,
		Brand:  p.Brand,
		Source: domain.SourceBarcodeLookup,
	}, nil
}
