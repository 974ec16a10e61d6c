package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/store"
)

// GetCachedThing retrieves a cached BGG document by BGG id.
// Returns store.ErrNotFound on a cache miss. Staleness is the caller's
// call; the store just reports when the row was fetched.
func (s *Store) GetCachedThing(ctx context.Context, bggID int) (string, time.Time, error) {
	var (
		payload   string
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM bgg_cache WHERE bgg_id = ?`, bggID).
		Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return "", time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return "", time.Time{}, err
	}

	at, err := parseTime(fetchedAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return payload, at, nil
}

// PutCachedThing stores or replaces a cached BGG document.
func (s *Store) PutCachedThing(ctx context.Context, bggID int, payload string, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bgg_cache (bgg_id, fetched_at, payload) VALUES (?, ?, ?)`,
		bggID, formatTime(fetchedAt), payload)
	return err
}

// PruneCachedThings deletes cache rows fetched before the cutoff and
// reports how many were removed.
func (s *Store) PruneCachedThings(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM bgg_cache WHERE fetched_at < ?`, formatTime(olderThan))
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
