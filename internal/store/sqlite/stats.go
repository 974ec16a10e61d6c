package sqlite

import (
	"context"

	"github.com/shelflineapp/shelfline-server/internal/domain"
)

// GetPlayStats aggregates a user's library and play history for the dashboard.
func (s *Store) GetPlayStats(ctx context.Context, userID string) (*domain.PlayStats, error) {
	stats := &domain.PlayStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(favorite), 0),
			COALESCE(SUM(for_sale), 0)
		FROM library_entries WHERE user_id = ?`, userID).
		Scan(&stats.TotalGames, &stats.Favorites, &stats.ForSale)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM plays p
		JOIN library_entries e ON e.id = p.entry_id
		WHERE e.user_id = ?`, userID).
		Scan(&stats.TotalPlays)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM library_entries e
		WHERE e.user_id = ?
		  AND NOT EXISTS (SELECT 1 FROM plays p WHERE p.entry_id = e.id)`, userID).
		Scan(&stats.NeverPlayed)
	if err != nil {
		return nil, err
	}

	mostPlayed, err := s.mostPlayed(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	stats.MostPlayed = mostPlayed

	byMonth, err := s.playsByMonth(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.PlaysByMonth = byMonth

	return stats, nil
}

func (s *Store) mostPlayed(ctx context.Context, userID string, limit int) ([]domain.GamePlays, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.title, COUNT(p.id) AS plays
		FROM plays p
		JOIN library_entries e ON e.id = p.entry_id
		JOIN games g ON g.id = e.game_id
		WHERE e.user_id = ?
		GROUP BY g.id, g.title
		ORDER BY plays DESC, g.title ASC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GamePlays
	for rows.Next() {
		var gp domain.GamePlays
		if err := rows.Scan(&gp.GameID, &gp.Title, &gp.Plays); err != nil {
			return nil, err
		}
		result = append(result, gp)
	}
	return result, rows.Err()
}

func (s *Store) playsByMonth(ctx context.Context, userID string) ([]domain.MonthlyPlays, error) {
	// played_at is RFC3339, so the first seven characters are "YYYY-MM".
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(p.played_at, 1, 7) AS month, COUNT(*)
		FROM plays p
		JOIN library_entries e ON e.id = p.entry_id
		WHERE e.user_id = ?
		GROUP BY month
		ORDER BY month ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MonthlyPlays
	for rows.Next() {
		var mp domain.MonthlyPlays
		if err := rows.Scan(&mp.Month, &mp.Plays); err != nil {
			return nil, err
		}
		result = append(result, mp)
	}
	return result, rows.Err()
}
