package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// gameColumns is the ordered list of columns selected in game queries.
// Must match the scan order in scanGame.
const gameColumns = `id, created_at, updated_at, barcode, title, source,
	bgg_id, publisher, year_published, cover_url,
	min_players, max_players, playtime_minutes, min_age,
	categories, mechanics, families, description, expansion, cover_image`

// scanGame scans a sql.Row (or sql.Rows via its Scan method) into a domain.Game.
func scanGame(scanner interface{ Scan(dest ...any) error }) (*domain.Game, error) {
	var g domain.Game

	var (
		createdAt  string
		updatedAt  string
		source     string
		bggID      sql.NullInt64
		yearPub    sql.NullInt64
		minPlayers sql.NullInt64
		maxPlayers sql.NullInt64
		playtime   sql.NullInt64
		minAge     sql.NullInt64
		categories sql.NullString
		mechanics  sql.NullString
		families   sql.NullString
		expansion  int
		coverImage sql.NullString
	)

	err := scanner.Scan(
		&g.ID,
		&createdAt,
		&updatedAt,
		&g.Barcode,
		&g.Title,
		&source,
		&bggID,
		&g.Publisher,
		&yearPub,
		&g.CoverURL,
		&minPlayers,
		&maxPlayers,
		&playtime,
		&minAge,
		&categories,
		&mechanics,
		&families,
		&g.Description,
		&expansion,
		&coverImage,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	g.Source = domain.Source(source)
	g.BGGID = intPtr(bggID)
	g.YearPublished = intPtr(yearPub)
	g.MinPlayers = intPtr(minPlayers)
	g.MaxPlayers = intPtr(maxPlayers)
	g.PlaytimeMinutes = intPtr(playtime)
	g.MinAge = intPtr(minAge)
	g.Expansion = expansion != 0

	// Tag columns: NULL means unknown, kept as nil slices.
	if g.Categories, err = parseTags(categories); err != nil {
		return nil, err
	}
	if g.Mechanics, err = parseTags(mechanics); err != nil {
		return nil, err
	}
	if g.Families, err = parseTags(families); err != nil {
		return nil, err
	}

	if coverImage.Valid && coverImage.String != "" {
		var info domain.CoverInfo
		if err := json.Unmarshal([]byte(coverImage.String), &info); err != nil {
			return nil, err
		}
		g.CoverImage = &info
	}

	return &g, nil
}

// parseTags decodes a JSON tag column. NULL stays nil.
func parseTags(col sql.NullString) ([]string, error) {
	if !col.Valid {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(col.String), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// marshalTags encodes a tag slice for storage. nil stays NULL so that
// "unknown" round-trips distinct from "known empty".
func marshalTags(tags []string) (sql.NullString, error) {
	if tags == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func marshalCoverImage(info *domain.CoverInfo) (sql.NullString, error) {
	if info == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// CreateGame inserts a new catalog game.
// Returns store.ErrAlreadyExists when the barcode (or id) is already present.
func (s *Store) CreateGame(ctx context.Context, game *domain.Game) error {
	categories, err := marshalTags(game.Categories)
	if err != nil {
		return err
	}
	mechanics, err := marshalTags(game.Mechanics)
	if err != nil {
		return err
	}
	families, err := marshalTags(game.Families)
	if err != nil {
		return err
	}
	coverImage, err := marshalCoverImage(game.CoverImage)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (
			id, created_at, updated_at, barcode, title, source,
			bgg_id, publisher, year_published, cover_url,
			min_players, max_players, playtime_minutes, min_age,
			categories, mechanics, families, description, expansion, cover_image
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		formatTime(game.CreatedAt),
		formatTime(game.UpdatedAt),
		game.Barcode,
		game.Title,
		string(game.Source),
		nullIntPtr(game.BGGID),
		game.Publisher,
		nullIntPtr(game.YearPublished),
		game.CoverURL,
		nullIntPtr(game.MinPlayers),
		nullIntPtr(game.MaxPlayers),
		nullIntPtr(game.PlaytimeMinutes),
		nullIntPtr(game.MinAge),
		categories,
		mechanics,
		families,
		game.Description,
		boolToInt(game.Expansion),
		coverImage,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.indexer.IndexGame(ctx, game); err != nil {
		s.logger.Warn("index game after create", "game_id", game.ID, "error", err)
	}
	return nil
}

// CreateOrGetGameByBarcode inserts the game, or returns the existing row when
// another request already created one for the same barcode. The bool result
// reports whether a new row was created.
//
// Losing the insert race is not an error: the canonical row wins and the
// caller's candidate is discarded.
func (s *Store) CreateOrGetGameByBarcode(ctx context.Context, game *domain.Game) (*domain.Game, bool, error) {
	err := s.CreateGame(ctx, game)
	if err == nil {
		return game, true, nil
	}
	if err != store.ErrAlreadyExists {
		return nil, false, err
	}

	existing, err := s.GetGameByBarcode(ctx, game.Barcode)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetGame retrieves a game by ID.
// Returns store.ErrNotFound if the game does not exist.
func (s *Store) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	game, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

// GetGameByBarcode retrieves a game by its barcode.
// Returns store.ErrNotFound if no game has that barcode.
func (s *Store) GetGameByBarcode(ctx context.Context, barcode string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE barcode = ?`, barcode)

	game, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

// UpdateGame performs a full row update on an existing game.
// Returns store.ErrNotFound if the game does not exist.
func (s *Store) UpdateGame(ctx context.Context, game *domain.Game) error {
	categories, err := marshalTags(game.Categories)
	if err != nil {
		return err
	}
	mechanics, err := marshalTags(game.Mechanics)
	if err != nil {
		return err
	}
	families, err := marshalTags(game.Families)
	if err != nil {
		return err
	}
	coverImage, err := marshalCoverImage(game.CoverImage)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE games SET
			updated_at = ?,
			barcode = ?,
			title = ?,
			source = ?,
			bgg_id = ?,
			publisher = ?,
			year_published = ?,
			cover_url = ?,
			min_players = ?,
			max_players = ?,
			playtime_minutes = ?,
			min_age = ?,
			categories = ?,
			mechanics = ?,
			families = ?,
			description = ?,
			expansion = ?,
			cover_image = ?
		WHERE id = ?`,
		formatTime(game.UpdatedAt),
		game.Barcode,
		game.Title,
		string(game.Source),
		nullIntPtr(game.BGGID),
		game.Publisher,
		nullIntPtr(game.YearPublished),
		game.CoverURL,
		nullIntPtr(game.MinPlayers),
		nullIntPtr(game.MaxPlayers),
		nullIntPtr(game.PlaytimeMinutes),
		nullIntPtr(game.MinAge),
		categories,
		mechanics,
		families,
		game.Description,
		boolToInt(game.Expansion),
		coverImage,
		game.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}

	if err := s.indexer.IndexGame(ctx, game); err != nil {
		s.logger.Warn("index game after update", "game_id", game.ID, "error", err)
	}
	return nil
}

// DeleteGame removes a game by ID. Library entries cascade.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
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

	if err := s.indexer.DeleteGame(ctx, id); err != nil {
		s.logger.Warn("deindex game after delete", "game_id", id, "error", err)
	}
	return nil
}

// ListGames returns one page of the catalog ordered by ID.
func (s *Store) ListGames(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Game], error) {
	params.Validate()
	after, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	// Fetch one extra row to detect another page.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id > ? ORDER BY id ASC LIMIT ?`,
		after, params.Limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Game]{Items: games}
	if len(games) > params.Limit {
		result.Items = games[:params.Limit]
		result.HasMore = true
		result.NextCursor = store.EncodeCursor(result.Items[len(result.Items)-1].ID)
	}
	return result, nil
}

// CountGames returns the total number of catalog games.
func (s *Store) CountGames(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&count)
	return count, err
}
