package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shelflineapp/shelfline-server/internal/metrics"
)

// Search performs a free-text name search for board games.
// Candidates come back in upstream relevance order; an empty slice means
// no candidates, which callers treat as a degraded (vendor-data-only)
// outcome rather than an error.
func (c *Client) Search(ctx context.Context, name string) ([]SearchResult, error) {
	query := url.Values{}
	query.Set("query", name)
	query.Set("type", "boardgame,boardgameexpansion")

	body, err := c.doRequest(ctx, "/search", query)
	if err != nil {
		metrics.BGGRequests.WithLabelValues("search", "error").Inc()
		return nil, wrapError("search", 0, err)
	}

	var raw rawItems
	if err := xml.Unmarshal(body, &raw); err != nil {
		metrics.BGGRequests.WithLabelValues("search", "error").Inc()
		return nil, wrapError("search", 0, fmt.Errorf("parse response: %w", err))
	}

	metrics.BGGRequests.WithLabelValues("search", "ok").Inc()

	results := make([]SearchResult, 0, len(raw.Items))
	for i := range raw.Items {
		item := &raw.Items[i]
		result := SearchResult{
			ID:   item.ID,
			Name: primaryName(item.Names),
		}
		if year, ok := parseIntValue(item.YearPublished.Value); ok {
			result.YearPublished = &year
		}
		results = append(results, result)
	}

	return results, nil
}

// primaryName returns the item's primary name, falling back to the first
// name of any type, then to the "Unknown Game" placeholder handled upstream.
func primaryName(names []rawName) string {
	for _, n := range names {
		if n.Type == "primary" && n.Value != "" {
			return n.Value
		}
	}
	if len(names) > 0 {
		return names[0].Value
	}
	return ""
}

// parseIntValue parses a value attribute, reporting absence for empty
// strings and non-positive numbers (BGG's "no data" convention).
func parseIntValue(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
