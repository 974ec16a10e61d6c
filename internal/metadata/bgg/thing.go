package bgg

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shelflineapp/shelfline-server/internal/metrics"
)

// GetGame retrieves full normalized metadata for a single thing by id.
// Returns ErrNotFound when the id is invalid or has been removed upstream.
func (c *Client) GetGame(ctx context.Context, id int) (*Thing, error) {
	if id <= 0 {
		return nil, wrapError("getGame", id, ErrBadRequest)
	}

	query := url.Values{}
	query.Set("id", strconv.Itoa(id))
	query.Set("stats", "0")

	body, err := c.doRequest(ctx, "/thing", query)
	if err != nil {
		status := "error"
		if errors.Is(err, ErrNotFound) {
			status = "not_found"
		}
		metrics.BGGRequests.WithLabelValues("thing", status).Inc()
		return nil, wrapError("getGame", id, err)
	}

	var raw rawItems
	if err := xml.Unmarshal(body, &raw); err != nil {
		metrics.BGGRequests.WithLabelValues("thing", "error").Inc()
		return nil, wrapError("getGame", id, fmt.Errorf("parse response: %w", err))
	}

	// BGG answers unknown ids with 200 and an empty item list.
	if len(raw.Items) == 0 {
		metrics.BGGRequests.WithLabelValues("thing", "not_found").Inc()
		return nil, wrapError("getGame", id, ErrNotFound)
	}

	metrics.BGGRequests.WithLabelValues("thing", "ok").Inc()
	return rawItemToThing(&raw.Items[0]), nil
}

// rawItemToThing normalizes a raw thing document.
// Absent optional fields stay nil so downstream upsert logic can tell
// "unknown" from "explicitly empty".
func rawItemToThing(item *rawItem) *Thing {
	t := &Thing{
		ID:          item.ID,
		Name:        primaryName(item.Names),
		Image:       item.Image,
		Thumbnail:   item.Thumbnail,
		Description: CleanDescription(item.Description),
		Expansion:   item.Type == typeExpansion,
	}

	if year, ok := parseIntValue(item.YearPublished.Value); ok {
		t.YearPublished = &year
	}
	if n, ok := parseIntValue(item.MinPlayers.Value); ok {
		t.MinPlayers = &n
	}
	if n, ok := parseIntValue(item.MaxPlayers.Value); ok {
		t.MaxPlayers = &n
	}
	if n, ok := parseIntValue(item.PlayingTime.Value); ok {
		t.PlaytimeMinutes = &n
	}
	if n, ok := parseIntValue(item.MinAge.Value); ok {
		t.MinAge = &n
	}

	for _, link := range item.Links {
		switch link.Type {
		case linkCategory:
			t.Categories = appendTag(t.Categories, link.Value)
		case linkMechanic:
			t.Mechanics = appendTag(t.Mechanics, link.Value)
		case linkFamily:
			t.Families = appendTag(t.Families, link.Value)
		case linkPublisher:
			// First publisher only; BGG lists every print run.
			if t.Publisher == "" {
				t.Publisher = link.Value
			}
		}
	}

	return t
}

// appendTag appends a non-empty, not-yet-seen tag value.
func appendTag(tags []string, value string) []string {
	if value == "" {
		return tags
	}
	for _, existing := range tags {
		if existing == value {
			return tags
		}
	}
	return append(tags, value)
}
