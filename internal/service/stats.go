package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// StatsService computes per-user dashboard aggregates.
type StatsService struct {
	store  store.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
	}
}

// GetStats returns the user's play statistics.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*domain.PlayStats, error) {
	stats, err := s.store.GetPlayStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	return stats, nil
}
