package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	domainerrors "github.com/shelflineapp/shelfline-server/internal/errors"
	"github.com/shelflineapp/shelfline-server/internal/id"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// LibraryService manages a user's personal shelf: entry flags, rankings,
// notes, and logged plays.
type LibraryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  store,
		logger: logger,
	}
}

// UpdateEntryRequest carries the mutable per-user fields of an entry.
// Nil pointers leave the field unchanged.
type UpdateEntryRequest struct {
	Favorite *bool   `json:"favorite,omitempty"`
	ForSale  *bool   `json:"for_sale,omitempty"`
	Ranking  *string `json:"ranking,omitempty"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// List returns the user's library, newest first.
func (s *LibraryService) List(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	entries, err := s.store.ListLibrary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return entries, nil
}

// Get returns one library entry, enforcing ownership.
func (s *LibraryService) Get(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	return s.getOwned(ctx, userID, entryID)
}

// Update applies partial changes to an entry's per-user state.
func (s *LibraryService) Update(ctx context.Context, userID, entryID string, req UpdateEntryRequest) (*domain.LibraryEntry, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	entry, err := s.getOwned(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if req.Favorite != nil {
		entry.Favorite = *req.Favorite
	}
	if req.ForSale != nil {
		entry.ForSale = *req.ForSale
	}
	if req.Ranking != nil {
		ranking := domain.Ranking(*req.Ranking)
		if !ranking.Valid() {
			return nil, domainerrors.Validation("ranking must be one of: low, medium, high, or empty")
		}
		entry.Ranking = ranking
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	entry.Touch()

	if err := s.store.UpdateLibraryEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	return entry, nil
}

// Remove deletes an entry and its logged plays.
func (s *LibraryService) Remove(ctx context.Context, userID, entryID string) error {
	if _, err := s.getOwned(ctx, userID, entryID); err != nil {
		return err
	}

	if err := s.store.DeleteLibraryEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.logger.Info("library entry removed", "user_id", userID, "entry_id", entryID)
	return nil
}

// LogPlay records a play of the game on the given date. A zero playedAt
// logs a play for today.
func (s *LibraryService) LogPlay(ctx context.Context, userID, entryID string, playedAt time.Time) (*domain.LibraryEntry, error) {
	entry, err := s.getOwned(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	if playedAt.After(time.Now().Add(24 * time.Hour)) {
		return nil, domainerrors.Validation("play date cannot be in the future")
	}

	playID, err := id.Generate("play")
	if err != nil {
		return nil, fmt.Errorf("generate play id: %w", err)
	}

	play := &domain.Play{ID: playID, PlayedAt: playedAt}
	if err := s.store.AddPlay(ctx, entry.ID, play); err != nil {
		return nil, fmt.Errorf("add play: %w", err)
	}

	return s.getOwned(ctx, userID, entryID)
}

// RemovePlay deletes one logged play.
func (s *LibraryService) RemovePlay(ctx context.Context, userID, entryID, playID string) error {
	if _, err := s.getOwned(ctx, userID, entryID); err != nil {
		return err
	}

	if err := s.store.DeletePlay(ctx, entryID, playID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("play not found")
		}
		return fmt.Errorf("delete play: %w", err)
	}
	return nil
}

// getOwned fetches an entry and verifies it belongs to the user. A foreign
// entry is reported as not-found, not forbidden, to avoid leaking IDs.
func (s *LibraryService) getOwned(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	entry, err := s.store.GetLibraryEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("library entry not found")
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if entry.UserID != userID {
		return nil, domainerrors.NotFound("library entry not found")
	}
	return entry, nil
}
