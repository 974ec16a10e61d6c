package service

import (
	"context"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// MetadataClient is the BoardGameGeek surface the metadata service needs.
// Satisfied by *bgg.Client.
type MetadataClient interface {
	Search(ctx context.Context, name string) ([]bgg.SearchResult, error)
	GetGame(ctx context.Context, id int) (*bgg.Thing, error)
}

// MetadataService orchestrates BGG metadata fetching with caching.
// Thing details are cached in the store with a TTL; searches are transient
// and never cached.
type MetadataService struct {
	client   MetadataClient
	store    store.Store
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewMetadataService creates a new metadata service.
func NewMetadataService(client MetadataClient, store store.Store, cacheTTL time.Duration, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		client:   client,
		store:    store,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Search searches the BGG catalog by name.
func (s *MetadataService) Search(ctx context.Context, name string) ([]bgg.SearchResult, error) {
	s.logger.Debug("searching BGG", "query", name)
	return s.client.Search(ctx, name)
}

// GetGame fetches game metadata, using the cache if fresh.
func (s *MetadataService) GetGame(ctx context.Context, bggID int) (*bgg.Thing, error) {
	if thing := s.fromCache(ctx, bggID); thing != nil {
		return thing, nil
	}

	s.logger.Debug("fetching game from BGG", "bgg_id", bggID)

	thing, err := s.client.GetGame(ctx, bggID)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, bggID, thing)
	return thing, nil
}

// RefreshGame forces a fresh fetch, bypassing and updating the cache.
func (s *MetadataService) RefreshGame(ctx context.Context, bggID int) (*bgg.Thing, error) {
	s.logger.Info("refreshing game metadata", "bgg_id", bggID)

	thing, err := s.client.GetGame(ctx, bggID)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, bggID, thing)
	return thing, nil
}

// PruneCache removes cache entries older than the TTL.
func (s *MetadataService) PruneCache(ctx context.Context) (int, error) {
	return s.store.PruneCachedThings(ctx, time.Now().Add(-s.cacheTTL))
}

func (s *MetadataService) fromCache(ctx context.Context, bggID int) *bgg.Thing {
	payload, fetchedAt, err := s.store.GetCachedThing(ctx, bggID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("cache lookup failed", "bgg_id", bggID, "error", err)
		}
		return nil
	}

	if time.Since(fetchedAt) > s.cacheTTL {
		return nil
	}

	var thing bgg.Thing
	if err := json.Unmarshal([]byte(payload), &thing); err != nil {
		s.logger.Warn("corrupt cache entry", "bgg_id", bggID, "error", err)
		return nil
	}

	s.logger.Debug("cache hit for game", "bgg_id", bggID, "age", time.Since(fetchedAt))
	return &thing
}

func (s *MetadataService) cache(ctx context.Context, bggID int, thing *bgg.Thing) {
	payload, err := json.Marshal(thing)
	if err != nil {
		s.logger.Warn("failed to encode cache entry", "bgg_id", bggID, "error", err)
		return
	}

	if err := s.store.PutCachedThing(ctx, bggID, string(payload), time.Now()); err != nil {
		// Don't fail the request over a cache write
		s.logger.Warn("failed to cache game", "bgg_id", bggID, "error", err)
	}
}
