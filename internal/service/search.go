package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
	"github.com/shelflineapp/shelfline-server/internal/search"
	"github.com/shelflineapp/shelfline-server/internal/store"
)

// SearchService answers catalog search queries from the bleve index and
// proxies free-text searches to BGG for games not yet in the catalog.
type SearchService struct {
	index    *search.Index
	store    store.Store
	metadata *MetadataService
	logger   *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store store.Store, metadata *MetadataService, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:    index,
		store:    store,
		metadata: metadata,
		logger:   logger,
	}
}

// Search queries the catalog index.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// SearchBGG proxies a free-text search upstream, for finding games the
// catalog does not have yet.
func (s *SearchService) SearchBGG(ctx context.Context, query string) ([]bgg.SearchResult, error) {
	return s.metadata.Search(ctx, query)
}

// RebuildIndex drops and repopulates the index from the catalog. Used by
// the admin reindex endpoint and after a mapping version bump.
func (s *SearchService) RebuildIndex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("reset index: %w", err)
	}

	indexed := 0
	params := store.PaginationParams{Limit: 500}
	for {
		page, err := s.store.ListGames(ctx, params)
		if err != nil {
			return indexed, fmt.Errorf("list games: %w", err)
		}

		docs := make([]*search.Document, 0, len(page.Items))
		for _, game := range page.Items {
			docs = append(docs, search.GameToDocument(game))
		}
		if err := s.index.IndexDocuments(docs); err != nil {
			return indexed, fmt.Errorf("index batch: %w", err)
		}
		indexed += len(docs)

		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	s.logger.Info("search index rebuilt", "documents", indexed)
	return indexed, nil
}

// Indexer adapts the index to the store's SearchIndexer interface so catalog
// mutations keep the index current.
func (s *SearchService) Indexer() store.SearchIndexer {
	return &indexAdapter{index: s.index}
}

type indexAdapter struct {
	index *search.Index
}

func (a *indexAdapter) IndexGame(ctx context.Context, game *domain.Game) error {
	return a.index.IndexDocument(search.GameToDocument(game))
}

func (a *indexAdapter) DeleteGame(ctx context.Context, gameID string) error {
	return a.index.DeleteDocument(gameID)
}
