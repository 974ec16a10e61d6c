package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	domainerrors "github.com/shelflineapp/shelfline-server/internal/errors"
	"github.com/shelflineapp/shelfline-server/internal/id"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
	"github.com/shelflineapp/shelfline-server/internal/metrics"
	"github.com/shelflineapp/shelfline-server/internal/store"
	"github.com/shelflineapp/shelfline-server/internal/util"
)

// contributeTimeout bounds the fire-and-forget contribute-back call.
const contributeTimeout = 10 * time.Second

// BarcodeResolver resolves a barcode across the vendor cascade.
// Satisfied by *lookup.Cascade.
type BarcodeResolver interface {
	Resolve(ctx context.Context, barcode string) (*lookup.Result, error)
}

// Contributor submits newly discovered barcode-to-BGG mappings back to the
// authoritative vendor. Satisfied by *gameupc.Client.
type Contributor interface {
	Contribute(ctx context.Context, barcode string, bggID int) error
}

// CoverFetcher kicks off a background cover download for a game.
// Satisfied by *CoverService.
type CoverFetcher interface {
	FetchAsync(gameID, coverURL string)
}

// ResolverService runs the scan-to-shelf pipeline: vendor cascade, BGG
// enrichment, idempotent catalog upsert, and the user library link.
type ResolverService struct {
	store       store.Store
	cascade     BarcodeResolver
	metadata    MetadataClient
	contributor Contributor
	covers      CoverFetcher
	logger      *slog.Logger
}

// NewResolverService creates a new resolver service. contributor and covers
// may be nil, disabling contribute-back and cover downloads respectively.
func NewResolverService(
	store store.Store,
	cascade BarcodeResolver,
	metadata MetadataClient,
	contributor Contributor,
	covers CoverFetcher,
	logger *slog.Logger,
) *ResolverService {
	return &ResolverService{
		store:       store,
		cascade:     cascade,
		metadata:    metadata,
		contributor: contributor,
		covers:      covers,
		logger:      logger,
	}
}

// AddResult is the outcome of a barcode add request.
type AddResult struct {
	Outcome domain.AddOutcome    `json:"outcome"`
	Barcode string               `json:"barcode"`
	Game    *domain.Game         `json:"game,omitempty"`
	Entry   *domain.LibraryEntry `json:"entry,omitempty"`
}

// ResolvePreview is a lookup-only result, without persistence.
type ResolvePreview struct {
	Barcode   string            `json:"barcode"`
	InCatalog bool              `json:"in_catalog"`
	Game      *domain.Game      `json:"game,omitempty"`
	Lookup    *lookup.Result    `json:"lookup,omitempty"`
	Candidate *bgg.SearchResult `json:"candidate,omitempty"`
}

// ManualGameInput is the manual-entry fallback payload for barcodes no
// lookup path could resolve.
type ManualGameInput struct {
	Barcode         string   `json:"barcode" validate:"required,min=8,max=14,numeric"`
	Title           string   `json:"title" validate:"required,max=500"`
	Publisher       string   `json:"publisher,omitempty" validate:"max=200"`
	YearPublished   *int     `json:"year_published,omitempty"`
	MinPlayers      *int     `json:"min_players,omitempty"`
	MaxPlayers      *int     `json:"max_players,omitempty"`
	PlaytimeMinutes *int     `json:"playtime_minutes,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Mechanics       []string `json:"mechanics,omitempty"`
}

// ResolveAndAdd resolves a barcode and adds the game to the user's library.
//
// The pipeline short-circuits on a catalog hit (no network traffic at all),
// degrades gracefully when BGG has nothing (vendor-only record), and treats
// a duplicate library link as a notice rather than an error. The errors that
// propagate from the pipeline itself (a failed BGG detail fetch, a failed
// catalog upsert) leave no catalog row behind, so a rescan is safe.
func (s *ResolverService) ResolveAndAdd(ctx context.Context, userID, rawBarcode string) (*AddResult, error) {
	barcode, err := normalizeBarcode(rawBarcode)
	if err != nil {
		return nil, err
	}

	// Catalog short-circuit: a known barcode skips every network stage.
	game, err := s.store.GetGameByBarcode(ctx, barcode)
	switch {
	case err == nil:
		s.logger.Debug("catalog hit", "barcode", barcode, "game_id", game.ID)
		return s.link(ctx, userID, game, false)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	result, err := s.cascade.Resolve(ctx, barcode)
	if err != nil {
		// Only context cancellation escapes the cascade.
		return nil, err
	}

	if result.Unknown {
		metrics.Resolutions.WithLabelValues(string(domain.AddOutcomeNeedsManualEntry)).Inc()
		s.logger.Info("barcode unresolved", "barcode", barcode)
		return &AddResult{
			Outcome: domain.AddOutcomeNeedsManualEntry,
			Barcode: barcode,
		}, nil
	}

	thing, err := s.enrich(ctx, barcode, &result.Product)
	if err != nil {
		return nil, err
	}

	game = buildGame(barcode, &result.Product, thing)

	game, created, err := s.store.CreateOrGetGameByBarcode(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("catalog upsert: %w", err)
	}

	if created {
		s.contributeBack(ctx, game)
		if s.covers != nil && game.CoverURL != "" {
			s.covers.FetchAsync(game.ID, game.CoverURL)
		}
	}

	return s.link(ctx, userID, game, created)
}

// ResolveBarcode previews what a barcode would resolve to, without touching
// the catalog or the user's library.
func (s *ResolverService) ResolveBarcode(ctx context.Context, rawBarcode string) (*ResolvePreview, error) {
	barcode, err := normalizeBarcode(rawBarcode)
	if err != nil {
		return nil, err
	}

	game, err := s.store.GetGameByBarcode(ctx, barcode)
	if err == nil {
		return &ResolvePreview{
			Barcode:   barcode,
			InCatalog: true,
			Game:      game,
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	result, err := s.cascade.Resolve(ctx, barcode)
	if err != nil {
		return nil, err
	}

	preview := &ResolvePreview{
		Barcode: barcode,
		Lookup:  result,
	}

	if !result.Unknown && result.BGGID == nil {
		if candidates, err := s.metadata.Search(ctx, result.Name); err == nil && len(candidates) > 0 {
			preview.Candidate = &candidates[0]
		}
	}

	return preview, nil
}

// AddManual adds a manually described game, for barcodes the lookup
// pipeline could not resolve. Idempotent on the barcode like any other add.
func (s *ResolverService) AddManual(ctx context.Context, userID string, input ManualGameInput) (*AddResult, error) {
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	gameID, err := id.Generate("game")
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}

	game := &domain.Game{
		ID:              gameID,
		Barcode:         input.Barcode,
		Title:           strings.TrimSpace(input.Title),
		Source:          domain.SourceManual,
		Publisher:       strings.TrimSpace(input.Publisher),
		YearPublished:   input.YearPublished,
		MinPlayers:      input.MinPlayers,
		MaxPlayers:      input.MaxPlayers,
		PlaytimeMinutes: input.PlaytimeMinutes,
		Categories:      util.CanonicalTags(input.Categories),
		Mechanics:       util.CanonicalTags(input.Mechanics),
	}
	game.InitTimestamps()

	game, created, err := s.store.CreateOrGetGameByBarcode(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("catalog upsert: %w", err)
	}

	return s.link(ctx, userID, game, created)
}

// enrich performs the BGG identity and detail stages. The search stage
// degrades to a vendor-only record when BGG has no candidates or the search
// itself fails; the detail stage has no fallback, so its transport failures
// propagate and fail the pipeline before anything is persisted. A stale
// vendor-supplied BGG id (ErrNotFound) still degrades.
func (s *ResolverService) enrich(ctx context.Context, barcode string, product *lookup.Product) (*bgg.Thing, error) {
	bggID := 0
	switch {
	case product.BGGID != nil:
		// The authoritative vendor already knows the BGG identity, so the
		// title search round trip is skipped entirely.
		bggID = *product.BGGID

	default:
		candidates, err := s.metadata.Search(ctx, product.Name)
		if err != nil {
			s.logger.Warn("BGG search failed",
				"barcode", barcode,
				"title", product.Name,
				"error", err,
			)
			return nil, nil
		}
		if len(candidates) == 0 {
			s.logger.Debug("no BGG candidates",
				"barcode", barcode,
				"title", product.Name,
			)
			return nil, nil
		}
		// Candidates come back in upstream relevance order; take the first.
		bggID = candidates[0].ID
	}

	thing, err := s.metadata.GetGame(ctx, bggID)
	if err != nil {
		if errors.Is(err, bgg.ErrNotFound) {
			s.logger.Warn("BGG id unknown upstream",
				"barcode", barcode,
				"bgg_id", bggID,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("bgg detail fetch: %w", err)
	}
	return thing, nil
}

// link attaches a catalog game to the user's library. A duplicate link is
// reported as AlreadyInLibrary, never as an error.
func (s *ResolverService) link(ctx context.Context, userID string, game *domain.Game, created bool) (*AddResult, error) {
	entryID, err := id.Generate("entry")
	if err != nil {
		return nil, fmt.Errorf("generate entry id: %w", err)
	}

	entry := domain.NewLibraryEntry(entryID, userID, game.ID)
	err = s.store.CreateLibraryEntry(ctx, entry)

	switch {
	case err == nil:
		entry.Game = game
		metrics.Resolutions.WithLabelValues(string(domain.AddOutcomeAdded)).Inc()
		s.logger.Info("game added to library",
			"user_id", userID,
			"game_id", game.ID,
			"barcode", game.Barcode,
			"new_catalog_entry", created,
		)
		return &AddResult{
			Outcome: domain.AddOutcomeAdded,
			Barcode: game.Barcode,
			Game:    game,
			Entry:   entry,
		}, nil

	case errors.Is(err, store.ErrAlreadyExists):
		existing, getErr := s.store.GetLibraryEntryByGame(ctx, userID, game.ID)
		if getErr != nil {
			return nil, fmt.Errorf("fetch existing library entry: %w", getErr)
		}
		metrics.Resolutions.WithLabelValues(string(domain.AddOutcomeAlreadyInLibrary)).Inc()
		return &AddResult{
			Outcome: domain.AddOutcomeAlreadyInLibrary,
			Barcode: game.Barcode,
			Game:    game,
			Entry:   existing,
		}, nil

	default:
		return nil, fmt.Errorf("create library entry: %w", err)
	}
}

// contributeBack reports a fresh barcode-to-BGG mapping to the authoritative
// vendor when the mapping came from anywhere else. Strictly best effort: it
// runs detached from the request and failures are only logged.
func (s *ResolverService) contributeBack(ctx context.Context, game *domain.Game) {
	if s.contributor == nil || game.BGGID == nil || game.Source == domain.SourceGameUPC {
		return
	}

	barcode := game.Barcode
	bggID := *game.BGGID
	detached := context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(detached, contributeTimeout)
		defer cancel()

		if err := s.contributor.Contribute(ctx, barcode, bggID); err != nil {
			s.logger.Warn("contribute-back failed",
				"barcode", barcode,
				"bgg_id", bggID,
				"error", err,
			)
			return
		}
		s.logger.Debug("contributed barcode mapping",
			"barcode", barcode,
			"bgg_id", bggID,
		)
	}()
}

// buildGame merges the vendor product and optional BGG metadata into a new
// catalog record. With no BGG metadata every enrichment field stays nil.
func buildGame(barcode string, product *lookup.Product, thing *bgg.Thing) *domain.Game {
	game := &domain.Game{
		ID:      id.MustGenerate("game"),
		Barcode: barcode,
		Title:   product.Name,
		Source:  product.Source,
	}
	game.InitTimestamps()

	if thing != nil {
		game.BGGID = &thing.ID
		if thing.Name != "" {
			game.Title = thing.Name
		}
		game.Publisher = thing.Publisher
		game.YearPublished = thing.YearPublished
		game.CoverURL = thing.CoverURL()
		game.MinPlayers = thing.MinPlayers
		game.MaxPlayers = thing.MaxPlayers
		game.PlaytimeMinutes = thing.PlaytimeMinutes
		game.MinAge = thing.MinAge
		game.Categories = util.CanonicalTags(thing.Categories)
		game.Mechanics = util.CanonicalTags(thing.Mechanics)
		game.Families = thing.Families
		game.Description = thing.Description
		game.Expansion = thing.Expansion
	}

	return game
}

// normalizeBarcode trims and validates a scanned barcode: digits only,
// 8 to 14 characters (EAN-8 through ITF-14).
func normalizeBarcode(raw string) (string, error) {
	barcode := strings.TrimSpace(raw)
	if len(barcode) < 8 || len(barcode) > 14 {
		return "", domainerrors.Validation("barcode must be 8-14 digits")
	}
	for _, r := range barcode {
		if !unicode.IsDigit(r) {
			return "", domainerrors.Validation("barcode must be 8-14 digits")
		}
	}
	return barcode, nil
}
