package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	domainerrors "github.com/shelflineapp/shelfline-server/internal/errors"
	"github.com/shelflineapp/shelfline-server/internal/store"
	"github.com/shelflineapp/shelfline-server/internal/util"
)

// CatalogService exposes the shared game catalog and its admin curation
// operations. User-facing reads are open to any authenticated user;
// mutations are admin-only and enforced at the routing layer.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// UpdateGameRequest carries admin-editable catalog fields. Nil pointers
// leave the field unchanged.
type UpdateGameRequest struct {
	Title           *string   `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Publisher       *string   `json:"publisher,omitempty" validate:"omitempty,max=200"`
	YearPublished   *int      `json:"year_published,omitempty"`
	MinPlayers      *int      `json:"min_players,omitempty"`
	MaxPlayers      *int      `json:"max_players,omitempty"`
	PlaytimeMinutes *int      `json:"playtime_minutes,omitempty"`
	MinAge          *int      `json:"min_age,omitempty"`
	Categories      *[]string `json:"categories,omitempty"`
	Mechanics       *[]string `json:"mechanics,omitempty"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,max=10000"`
}

// List returns a page of the catalog.
func (s *CatalogService) List(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Game], error) {
	params.Validate()
	return s.store.ListGames(ctx, params)
}

// Get returns one catalog game.
func (s *CatalogService) Get(ctx context.Context, gameID string) (*domain.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("game not found")
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// Update applies partial edits to a catalog game and reindexes it.
func (s *CatalogService) Update(ctx context.Context, gameID string, req UpdateGameRequest) (*domain.Game, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	game, err := s.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		game.Title = *req.Title
	}
	if req.Publisher != nil {
		game.Publisher = *req.Publisher
	}
	if req.YearPublished != nil {
		game.YearPublished = req.YearPublished
	}
	if req.MinPlayers != nil {
		game.MinPlayers = req.MinPlayers
	}
	if req.MaxPlayers != nil {
		game.MaxPlayers = req.MaxPlayers
	}
	if req.PlaytimeMinutes != nil {
		game.PlaytimeMinutes = req.PlaytimeMinutes
	}
	if req.MinAge != nil {
		game.MinAge = req.MinAge
	}
	if req.Categories != nil {
		game.Categories = util.CanonicalTags(*req.Categories)
	}
	if req.Mechanics != nil {
		game.Mechanics = util.CanonicalTags(*req.Mechanics)
	}
	if req.Description != nil {
		game.Description = *req.Description
	}
	game.Touch()

	if err := s.store.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	s.logger.Info("catalog game updated", "game_id", gameID)
	return game, nil
}

// Delete removes a game from the catalog. Refused while any user's library
// still references it.
func (s *CatalogService) Delete(ctx context.Context, gameID string) error {
	if _, err := s.Get(ctx, gameID); err != nil {
		return err
	}

	refs, err := s.store.CountEntriesForGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if refs > 0 {
		return domainerrors.Conflict(fmt.Sprintf("game is in %d libraries", refs))
	}

	if err := s.store.DeleteGame(ctx, gameID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}

	s.logger.Info("catalog game deleted", "game_id", gameID)
	return nil
}

// Count returns the catalog size.
func (s *CatalogService) Count(ctx context.Context) (int, error) {
	return s.store.CountGames(ctx)
}
