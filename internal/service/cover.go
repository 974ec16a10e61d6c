package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	domainerrors "github.com/shelflineapp/shelfline-server/internal/errors"
	"github.com/shelflineapp/shelfline-server/internal/media/covers"
	"github.com/shelflineapp/shelfline-server/internal/media/images"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// fetchTimeout bounds one background cover fetch end to end.
const fetchTimeout = 60 * time.Second

// CoverService downloads and processes box art for catalog games, storing
// a normalized JPEG plus a blurhash placeholder on the game record.
type CoverService struct {
	store      store.Store
	downloader *covers.Downloader
	storage    *images.Storage
	logger     *slog.Logger
}

// NewCoverService creates a new cover service.
func NewCoverService(
	store store.Store,
	downloader *covers.Downloader,
	storage *images.Storage,
	logger *slog.Logger,
) *CoverService {
	return &CoverService{
		store:      store,
		downloader: downloader,
		storage:    storage,
		logger:     logger,
	}
}

// FetchAsync starts a background fetch for a game's cover. Best effort:
// failures are logged and the game simply keeps its remote CoverURL.
func (s *CoverService) FetchAsync(gameID, coverURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := s.Fetch(ctx, gameID, coverURL); err != nil {
			s.logger.Warn("cover fetch failed",
				"game_id", gameID,
				"url", coverURL,
				"error", err,
			)
		}
	}()
}

// Fetch downloads, normalizes, and stores a cover, then records the local
// cover info on the game.
func (s *CoverService) Fetch(ctx context.Context, gameID, coverURL string) error {
	result := s.downloader.Download(ctx, gameID, coverURL)
	if !result.Success {
		return result.Error
	}

	raw, err := s.storage.Get(gameID)
	if err != nil {
		return fmt.Errorf("read downloaded cover: %w", err)
	}

	processed, err := images.Process(raw)
	if err != nil {
		return fmt.Errorf("process cover: %w", err)
	}
	if err := s.storage.Save(gameID, processed.Data); err != nil {
		return fmt.Errorf("store processed cover: %w", err)
	}

	hash, err := images.ComputeBlurHash(processed.Data)
	if err != nil {
		// A missing placeholder is not worth failing the fetch over.
		s.logger.Warn("blurhash computation failed", "game_id", gameID, "error", err)
		hash = ""
	}

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}

	game.CoverImage = &domain.CoverInfo{
		Path:     filepath.Base(s.storage.Path(gameID)),
		Format:   processed.Format,
		Width:    processed.Width,
		Height:   processed.Height,
		Size:     int64(len(processed.Data)),
		BlurHash: hash,
	}
	game.Touch()

	if err := s.store.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("record cover info: %w", err)
	}

	s.logger.Info("cover stored",
		"game_id", gameID,
		"width", processed.Width,
		"height", processed.Height,
		"size", len(processed.Data),
	)
	return nil
}

// Open returns the stored cover bytes and an ETag hash for a game.
func (s *CoverService) Open(gameID string) ([]byte, string, error) {
	if !s.storage.Exists(gameID) {
		return nil, "", domainerrors.NotFound("cover not found")
	}

	data, err := s.storage.Get(gameID)
	if err != nil {
		return nil, "", fmt.Errorf("read cover: %w", err)
	}

	hash, err := s.storage.Hash(gameID)
	if err != nil {
		return nil, "", fmt.Errorf("hash cover: %w", err)
	}
	return data, hash, nil
}

// Delete removes a game's stored cover, if any.
func (s *CoverService) Delete(ctx context.Context, gameID string) error {
	if err := s.storage.Delete(gameID); err != nil {
		return fmt.Errorf("delete cover: %w", err)
	}

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if game.CoverImage != nil {
		game.CoverImage = nil
		game.Touch()
		return s.store.UpdateGame(ctx, game)
	}
	return nil
}
