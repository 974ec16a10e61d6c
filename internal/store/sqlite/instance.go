package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelflineapp/shelfline-server/internal/store"
)

// GetInstanceKey retrieves a value from the instance key-value table.
// Returns store.ErrNotFound if the key does not exist.
func (s *Store) GetInstanceKey(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM instance WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetInstanceKey sets a value in the instance key-value table.
// Creates the key if it does not exist, or replaces the existing value.
func (s *Store) SetInstanceKey(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO instance (key, value) VALUES (?, ?)`, key, value)
	return err
}
