// Package store defines the persistence interface for the Shelfline server.
package store

import (
	"context"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/domain"
)

// Store is the persistence interface consumed by the service layer.
type Store interface {
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	TouchSession(ctx context.Context, id string, usedAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsForUser(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Catalog
	CreateGame(ctx context.Context, game *domain.Game) error
	CreateOrGetGameByBarcode(ctx context.Context, game *domain.Game) (*domain.Game, bool, error)
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	GetGameByBarcode(ctx context.Context, barcode string) (*domain.Game, error)
	UpdateGame(ctx context.Context, game *domain.Game) error
	DeleteGame(ctx context.Context, id string) error
	ListGames(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Game], error)
	CountGames(ctx context.Context) (int, error)

	// Library
	CreateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error
	GetLibraryEntry(ctx context.Context, id string) (*domain.LibraryEntry, error)
	GetLibraryEntryByGame(ctx context.Context, userID, gameID string) (*domain.LibraryEntry, error)
	UpdateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error
	DeleteLibraryEntry(ctx context.Context, id string) error
	ListLibrary(ctx context.Context, userID string) ([]*domain.LibraryEntry, error)
	CountEntriesForGame(ctx context.Context, gameID string) (int, error)

	// Plays
	AddPlay(ctx context.Context, entryID string, play *domain.Play) error
	DeletePlay(ctx context.Context, entryID, playID string) error

	// Stats
	GetPlayStats(ctx context.Context, userID string) (*domain.PlayStats, error)

	// BGG cache
	GetCachedThing(ctx context.Context, bggID int) (payload string, fetchedAt time.Time, err error)
	PutCachedThing(ctx context.Context, bggID int, payload string, fetchedAt time.Time) error
	PruneCachedThings(ctx context.Context, olderThan time.Time) (int, error)

	// Instance key/value state
	GetInstanceKey(ctx context.Context, key string) (string, error)
	SetInstanceKey(ctx context.Context, key, value string) error
}

// SearchIndexer receives catalog changes to keep the search index current.
type SearchIndexer interface {
	IndexGame(ctx context.Context, game *domain.Game) error
	DeleteGame(ctx context.Context, gameID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexGame(context.Context, *domain.Game) error { return nil }
func (NoopSearchIndexer) DeleteGame(context.Context, string) error      { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
