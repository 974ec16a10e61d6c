package domain

import "time"

// Ranking is a user's coarse personal rating of a game.
type Ranking string

// Ranking levels. RankingNone means the user has not ranked the game.
const (
	RankingNone   Ranking = ""
	RankingLow    Ranking = "low"
	RankingMedium Ranking = "medium"
	RankingHigh   Ranking = "high"
)

// Valid reports whether r is a known ranking value.
func (r Ranking) Valid() bool {
	switch r {
	case RankingNone, RankingLow, RankingMedium, RankingHigh:
		return true
	}
	return false
}

// LibraryEntry is a per-user join between a user and a catalog game,
// carrying user-private state. At most one entry exists per (user, game)
// pair; a duplicate add is surfaced as "already in your library", never
// as a second row.
type LibraryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	Favorite  bool      `json:"favorite"`
	ForSale   bool      `json:"for_sale"`
	Ranking   Ranking   `json:"ranking,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Plays     []Play    `json:"plays,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Game is the denormalized catalog record, populated on reads.
	Game *Game `json:"game,omitempty"`
}

// Play records one logged play of a game. The date is what matters to the
// dashboard; times are normalized to midnight UTC by the store.
type Play struct {
	ID       string    `json:"id"`
	PlayedAt time.Time `json:"played_at"`
}

// NewLibraryEntry creates a library entry linking a user to a game.
func NewLibraryEntry(id, userID, gameID string) *LibraryEntry {
	now := time.Now()
	return &LibraryEntry{
		ID:        id,
		UserID:    userID,
		GameID:    gameID,
		AddedAt:   now,
		UpdatedAt: now,
	}
}

// PlayCount returns the number of logged plays.
func (e *LibraryEntry) PlayCount() int {
	return len(e.Plays)
}

// LastPlayed returns the most recent play date, or the zero time when the
// game has never been played.
func (e *LibraryEntry) LastPlayed() time.Time {
	var last time.Time
	for _, p := range e.Plays {
		if p.PlayedAt.After(last) {
			last = p.PlayedAt
		}
	}
	return last
}

// Touch updates the UpdatedAt timestamp to the current time.
func (e *LibraryEntry) Touch() {
	e.UpdatedAt = time.Now()
}
