package store

import (
	"encoding/base64"
	"fmt"
)

// PaginationParams carries cursor pagination inputs for catalog listings.
type PaginationParams struct {
	Limit  int    // Items per page (default 100, max 500)
	Cursor string // Opaque cursor for the next page; empty for the first page
}

// PaginatedResult wraps one page of items with continuation metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Validate clamps pagination parameters to sane bounds.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
}

// EncodeCursor turns the last-seen row key into an opaque cursor.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor recovers the row key from an opaque cursor.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}
	return string(decoded), nil
}
