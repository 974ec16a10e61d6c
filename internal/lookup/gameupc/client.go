// Package gameupc implements the GameUPC barcode vendor adapter.
//
// GameUPC is the authoritative vendor in the lookup cascade: it maintains a
// community-fed barcode-to-BGG mapping, so a hit here can carry a BGG id
// directly and skip the downstream name search. The adapter also submits
// newly discovered mappings back via Contribute.
package gameupc

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
)

const (
	defaultBaseURL = "https://api.gameupc.com/prod"
	defaultTimeout = 5 * time.Second

	// GameUPC allows a generous request rate; 2 rps with a small burst
	// keeps us comfortably inside it.
	defaultRPS   = 2.0
	defaultBurst = 4
)

// Client is a rate-limited GameUPC API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// New creates a GameUPC client. The API key is sent as the x-api-key header.
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
	return domain.SourceGameUPC
}

// rawResponse mirrors the GameUPC lookup response body.
type rawResponse struct {
	UPC   string    `json:"upc"`
	Games []rawGame `json:"games"`
}

type rawGame struct {
	Name    string      `json:"name"`
	Brand   string      `json:"brand"`
	BGGInfo *rawBGGInfo `json:"bgg_info"`
}

type rawBGGInfo struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Lookup implements lookup.Client. A single attempt, no retries.
func (c *Client) Lookup(ctx context.Context, barcode string) (*lookup.Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	url := fmt.Sprintf("%s/upc/%s", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	c.logger.Debug("gameupc lookup", "barcode", barcode)

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

	if len(raw.Games) == 0 {
		return nil, lookup.ErrNoMatch
	}

	game := raw.Games[0]
	product := &lookup.Product{
		Name:   game.Name,
		Brand:  game.Brand,
		Source: domain.SourceGameUPC,
	}
	if game.BGGInfo != nil && game.BGGInfo.ID > 0 {
		bggID := game.BGGInfo.ID
		product.BGGID = &bggID
	}
	return product, nil
}

// Contribute submits a newly discovered barcode-to-BGG mapping back to
// GameUPC so future lookups for the barcode short-circuit. Callers treat
// this as fire-and-forget; an error here is only ever logged.
func (c *Client) Contribute(ctx context.Context, barcode string, bggID int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(struct {
		BGGID int `json:"bgg_id"`
	}{BGGID: bggID})
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	url := fmt.Sprintf("%s/upc/%s/bgg_info", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused; the body content is not
	// interesting beyond the status.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("contributed barcode mapping",
		"barcode", barcode,
		"bgg_id", bggID,
	)
	return nil
}
