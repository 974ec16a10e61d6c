package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

const entryColumns = `id, user_id, game_id, favorite, for_sale, ranking,
	notes, added_at, updated_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry

	var (
		favorite  int
		forSale   int
		ranking   string
		addedAt   string
		updatedAt string
	)

	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&e.GameID,
		&favorite,
		&forSale,
		&ranking,
		&e.Notes,
		&addedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	e.Favorite = favorite != 0
	e.ForSale = forSale != 0
	e.Ranking = domain.Ranking(ranking)

	return &e, nil
}

// CreateLibraryEntry links a game into a user's library.
// Returns store.ErrAlreadyExists when the user already has the game.
func (s *Store) CreateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library_entries (
			id, user_id, game_id, favorite, for_sale, ranking,
			notes, added_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.GameID,
		boolToInt(entry.Favorite),
		boolToInt(entry.ForSale),
		string(entry.Ranking),
		entry.Notes,
		formatTime(entry.AddedAt),
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetLibraryEntry retrieves an entry by ID with its plays and game attached.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) GetLibraryEntry(ctx context.Context, id string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachEntryDetails(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetLibraryEntryByGame retrieves a user's entry for a specific game.
// Returns store.ErrNotFound when the game is not in the user's library.
func (s *Store) GetLibraryEntryByGame(ctx context.Context, userID, gameID string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? AND game_id = ?`,
		userID, gameID)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachEntryDetails(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateLibraryEntry updates the user-editable fields of an entry.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) UpdateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE library_entries SET
			favorite = ?,
			for_sale = ?,
			ranking = ?,
			notes = ?,
			updated_at = ?
		WHERE id = ?`,
		boolToInt(entry.Favorite),
		boolToInt(entry.ForSale),
		string(entry.Ranking),
		entry.Notes,
		formatTime(entry.UpdatedAt),
		entry.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteLibraryEntry removes an entry by ID. Plays cascade.
func (s *Store) DeleteLibraryEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM library_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CountEntriesForGame returns how many library entries reference a game,
// across all users.
func (s *Store) CountEntriesForGame(ctx context.Context, gameID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM library_entries WHERE game_id = ?`, gameID).Scan(&count)
	return count, err
}

// ListLibrary returns all of a user's entries, newest first, with plays and
// catalog games attached.
func (s *Store) ListLibrary(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries
		 WHERE user_id = ? ORDER BY added_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LibraryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := s.attachEntryDetails(ctx, entry); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// attachEntryDetails loads an entry's plays and denormalized game.
func (s *Store) attachEntryDetails(ctx context.Context, entry *domain.LibraryEntry) error {
	plays, err := s.listPlays(ctx, entry.ID)
	if err != nil {
		return err
	}
	entry.Plays = plays

	game, err := s.GetGame(ctx, entry.GameID)
	if err != nil {
		return err
	}
	entry.Game = game
	return nil
}

// AddPlay records one play against a library entry.
func (s *Store) AddPlay(ctx context.Context, entryID string, play *domain.Play) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plays (id, entry_id, played_at) VALUES (?, ?, ?)`,
		play.ID, entryID, formatTime(play.PlayedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeletePlay removes a logged play. The entry ID guards against deleting
// another user's play with a guessed play ID.
func (s *Store) DeletePlay(ctx context.Context, entryID, playID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM plays WHERE id = ? AND entry_id = ?`, playID, entryID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) listPlays(ctx context.Context, entryID string) ([]domain.Play, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, played_at FROM plays WHERE entry_id = ? ORDER BY played_at ASC`,
		entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []domain.Play
	for rows.Next() {
		var p domain.Play
		var playedAt string
		if err := rows.Scan(&p.ID, &playedAt); err != nil {
			return nil, err
		}
		if p.PlayedAt, err = parseTime(playedAt); err != nil {
			return nil, err
		}
		plays = append(plays, p)
	}
	return plays, rows.Err()
}
