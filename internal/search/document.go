// Package search provides full-text catalog search using Bleve.
// Games are searchable by title and publisher with fuzzy matching, and
// filterable by category, mechanic, player count, and year.
package search

import (
	"github.com/shelflineapp/shelfline-server/internal/domain"
)

// Document is the indexed representation of a catalog game.
//
// Tag collections are denormalized into the document so one query answers
// "cooperative games for 2 players" without touching the store.
type Document struct {
	ID      string `json:"id"`
	Barcode string `json:"barcode"`

	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`

	Categories []string `json:"categories,omitempty"`
	Mechanics  []string `json:"mechanics,omitempty"`
	Families   []string `json:"families,omitempty"`

	Description string `json:"description,omitempty"`

	YearPublished   int  `json:"year_published,omitempty"`
	MinPlayers      int  `json:"min_players,omitempty"`
	MaxPlayers      int  `json:"max_players,omitempty"`
	PlaytimeMinutes int  `json:"playtime_minutes,omitempty"`
	Expansion       bool `json:"expansion"`

	// Unix millis, for recency sorting.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names verbatim, but our mapping uses
// lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"barcode":    d.Barcode,
		"title":      d.Title,
		"expansion":  d.Expansion,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
	}
	if len(d.Mechanics) > 0 {
		m["mechanics"] = d.Mechanics
	}
	if len(d.Families) > 0 {
		m["families"] = d.Families
	}
	if d.YearPublished > 0 {
		m["year_published"] = d.YearPublished
	}
	if d.MinPlayers > 0 {
		m["min_players"] = d.MinPlayers
	}
	if d.MaxPlayers > 0 {
		m["max_players"] = d.MaxPlayers
	}
	if d.PlaytimeMinutes > 0 {
		m["playtime_minutes"] = d.PlaytimeMinutes
	}

	return m
}

// GameToDocument converts a catalog game to its indexed form.
func GameToDocument(game *domain.Game) *Document {
	doc := &Document{
		ID:          game.ID,
		Barcode:     game.Barcode,
		Title:       game.Title,
		Publisher:   game.Publisher,
		Categories:  game.Categories,
		Mechanics:   game.Mechanics,
		Families:    game.Families,
		Description: game.Description,
		Expansion:   game.Expansion,
		CreatedAt:   game.CreatedAt.UnixMilli(),
		UpdatedAt:   game.UpdatedAt.UnixMilli(),
	}

	if game.YearPublished != nil {
		doc.YearPublished = *game.YearPublished
	}
	if game.MinPlayers != nil {
		doc.MinPlayers = *game.MinPlayers
	}
	if game.MaxPlayers != nil {
		doc.MaxPlayers = *game.MaxPlayers
	}
	if game.PlaytimeMinutes != nil {
		doc.PlaytimeMinutes = *game.PlaytimeMinutes
	}

	return doc
}
