// Package domain contains the core business entities for the Shelfline
// board-game collection.
package domain

import (
	"strconv"
	"time"
)

// Source identifies which lookup path produced a game's title.
type Source string

// Lookup sources, in cascade priority order.
const (
	SourceGameUPC       Source = "gameupc"
	SourceBarcodeLookup Source = "barcodelookup"
	SourceUPCItemDB     Source = "upcitemdb"
	SourceManual        Source = "manual"
)

// UnknownGameTitle is the sentinel title used when every lookup path
// comes back empty.
const UnknownGameTitle = "Unknown Game"

// Game is a shared, deduplicated description of a physical game product.
// The barcode is the catalog's natural key: one row per barcode, reused by
// every user who scans it.
//
// Optional metadata uses pointers and nil slices so that "unknown" is
// distinguishable from "explicitly zero/empty". A game resolved without BGG
// enrichment carries nil for every BGG-sourced field.
type Game struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Barcode string `json:"barcode"`
	Title   string `json:"title"`
	Source  Source `json:"source"`

	// BGG-sourced metadata. All optional.
	BGGID           *int     `json:"bgg_id,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	YearPublished   *int     `json:"year_published,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	MinPlayers      *int     `json:"min_players,omitempty"`
	MaxPlayers      *int     `json:"max_players,omitempty"`
	PlaytimeMinutes *int     `json:"playtime_minutes,omitempty"`
	MinAge          *int     `json:"min_age,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Mechanics       []string `json:"mechanics,omitempty"`
	Families        []string `json:"families,omitempty"`
	Description     string   `json:"description,omitempty"`
	Expansion       bool     `json:"expansion,omitempty"`

	// CoverImage describes the locally processed cover, when one has been
	// downloaded. Populated asynchronously after catalog creation.
	CoverImage *CoverInfo `json:"cover_image,omitempty"`
}

// CoverInfo describes a processed cover image on disk.
type CoverInfo struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	BlurHash string `json:"blur_hash,omitempty"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (g *Game) Touch() {
	g.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (g *Game) InitTimestamps() {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
}

// HasBGGMetadata reports whether the game carries any BGG enrichment.
func (g *Game) HasBGGMetadata() bool {
	return g.BGGID != nil
}

// PlayerRange formats the player count bounds for display.
// Either bound may be absent, meaning unbounded/unknown on that side.
func (g *Game) PlayerRange() string {
	switch {
	case g.MinPlayers != nil && g.MaxPlayers != nil:
		if *g.MinPlayers == *g.MaxPlayers {
			return strconv.Itoa(*g.MinPlayers)
		}
		return strconv.Itoa(*g.MinPlayers) + "-" + strconv.Itoa(*g.MaxPlayers)
	case g.MinPlayers != nil:
		return strconv.Itoa(*g.MinPlayers) + "+"
	case g.MaxPlayers != nil:
		return "up to " + strconv.Itoa(*g.MaxPlayers)
	default:
		return ""
	}
}
