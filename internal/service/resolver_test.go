package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
	"github.com/shelflineapp/shelfline-server/internal/store"
	"github.com/shelflineapp/shelfline-server/internal/store/sqlite"
)

// fakeCascade replays scripted vendor results and counts calls.
type fakeCascade struct {
	mu      sync.Mutex
	results map[string]*lookup.Result
	err     error
	calls   int
}

func (f *fakeCascade) Resolve(ctx context.Context, barcode string) (*lookup.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if result, ok := f.results[barcode]; ok {
		return result, nil
	}
	return &lookup.Result{
		Product: lookup.Product{Name: domain.UnknownGameTitle},
		Unknown: true,
	}, nil
}

func (f *fakeCascade) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeMetadata is a scripted BGG client.
type fakeMetadata struct {
	mu          sync.Mutex
	searches    map[string][]bgg.SearchResult
	things      map[int]*bgg.Thing
	searchErr   error
	getErr      error
	searchCalls int
	getCalls    int
}

func (f *fakeMetadata) Search(ctx context.Context, name string) ([]bgg.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searches[name], nil
}

func (f *fakeMetadata) GetGame(ctx context.Context, id int) (*bgg.Thing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if thing, ok := f.things[id]; ok {
		return thing, nil
	}
	return nil, bgg.ErrNotFound
}

// fakeContributor records contribute-back calls.
type fakeContributor struct {
	mu    sync.Mutex
	calls []contribution
	err   error
	done  chan struct{}
}

type contribution struct {
	barcode string
	bggID   int
}

func newFakeContributor() *fakeContributor {
	return &fakeContributor{done: make(chan struct{}, 8)}
}

func (f *fakeContributor) Contribute(ctx context.Context, barcode string, bggID int) error {
	f.mu.Lock()
	f.calls = append(f.calls, contribution{barcode: barcode, bggID: bggID})
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.err
}

func (f *fakeContributor) wait(t *testing.T) contribution {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for contribute-back")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeContributor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeCovers records which covers were requested.
type fakeCovers struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeCovers) FetchAsync(gameID, coverURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, gameID)
}

func intp(n int) *int { return &n }

// sailThing is the BGG record for the "Sail" fixture.
func sailThing() *bgg.Thing {
	return &bgg.Thing{
		ID:              377470,
		Name:            "Sail",
		YearPublished:   intp(2023),
		Image:           "https://cf.geekdo-images.com/sail/img/cover.jpg",
		Publisher:       "Allplay",
		MinPlayers:      intp(2),
		MaxPlayers:      intp(2),
		PlaytimeMinutes: intp(30),
		Categories:      []string{"Card Game", "Nautical"},
		Mechanics:       []string{"Cooperative Game", "Trick-taking"},
		Description:     "A cooperative trick-taking game.",
	}
}

type resolverFixture struct {
	resolver    *ResolverService
	store       store.Store
	cascade     *fakeCascade
	metadata    *fakeMetadata
	contributor *fakeContributor
	covers      *fakeCovers
	userID      string
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	user := &domain.User{
		ID:           "user_test1",
		Email:        "test@example.com",
		PasswordHash: "$argon2id$fakehashfortest",
		Role:         domain.RoleMember,
		DisplayName:  "Test User",
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	cascade := &fakeCascade{results: map[string]*lookup.Result{}}
	metadata := &fakeMetadata{
		searches: map[string][]bgg.SearchResult{},
		things:   map[int]*bgg.Thing{},
	}
	contributor := newFakeContributor()
	fetcher := &fakeCovers{}

	resolver := NewResolverService(st, cascade, metadata, contributor, fetcher, logger.Discard())

	return &resolverFixture{
		resolver:    resolver,
		store:       st,
		cascade:     cascade,
		metadata:    metadata,
		contributor: contributor,
		covers:      fetcher,
		userID:      user.ID,
	}
}

func TestResolveAndAdd_VendorIDPath(t *testing.T) {
	f := newResolverFixture(t)

	// GameUPC knows the BGG id directly; the title search must be skipped.
	f.cascade.results["618149323746"] = &lookup.Result{
		Product: lookup.Product{
			Name:   "Sail",
			BGGID:  intp(377470),
			Source: domain.SourceGameUPC,
		},
	}
	f.metadata.things[377470] = sailThing()

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
	if err != nil {
		t.Fatalf("ResolveAndAdd() error = %v", err)
	}

	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if f.metadata.searchCalls != 0 {
		t.Errorf("search called %d times, want 0 (vendor supplied the BGG id)", f.metadata.searchCalls)
	}

	game := result.Game
	if game.Title != "Sail" {
		t.Errorf("title = %q, want %q", game.Title, "Sail")
	}
	if game.BGGID == nil || *game.BGGID != 377470 {
		t.Errorf("bgg_id = %v, want 377470", game.BGGID)
	}
	if game.Publisher != "Allplay" {
		t.Errorf("publisher = %q, want %q", game.Publisher, "Allplay")
	}
	if game.YearPublished == nil || *game.YearPublished != 2023 {
		t.Errorf("year = %v, want 2023", game.YearPublished)
	}
	if game.MinPlayers == nil || *game.MinPlayers != 2 {
		t.Errorf("min players = %v, want 2", game.MinPlayers)
	}
	if game.PlaytimeMinutes == nil || *game.PlaytimeMinutes != 30 {
		t.Errorf("playtime = %v, want 30", game.PlaytimeMinutes)
	}
	if result.Entry == nil || result.Entry.UserID != f.userID {
		t.Error("library entry missing or not owned by user")
	}

	// Authoritative source; nothing to contribute back.
	time.Sleep(50 * time.Millisecond)
	if n := f.contributor.count(); n != 0 {
		t.Errorf("contribute-back called %d times for authoritative source, want 0", n)
	}

	// Cover fetch kicked off for the new catalog row.
	f.covers.mu.Lock()
	coverCalls := len(f.covers.calls)
	f.covers.mu.Unlock()
	if coverCalls != 1 {
		t.Errorf("cover fetches = %d, want 1", coverCalls)
	}
}

func TestResolveAndAdd_TitleSearchPath(t *testing.T) {
	f := newResolverFixture(t)

	// Non-authoritative vendor without a BGG id: title search, take first.
	f.cascade.results["712345678904"] = &lookup.Result{
		Product: lookup.Product{
			Name:   "Sail",
			Source: domain.SourceBarcodeLookup,
		},
	}
	f.metadata.searches["Sail"] = []bgg.SearchResult{
		{ID: 377470, Name: "Sail", YearPublished: intp(2023)},
		{ID: 12345, Name: "Sail Away"},
	}
	f.metadata.things[377470] = sailThing()

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "712345678904")
	if err != nil {
		t.Fatalf("ResolveAndAdd() error = %v", err)
	}

	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if result.Game.BGGID == nil || *result.Game.BGGID != 377470 {
		t.Errorf("bgg_id = %v, want first candidate 377470", result.Game.BGGID)
	}

	// Non-authoritative source with a found BGG id: contribute back.
	c := f.contributor.wait(t)
	if c.barcode != "712345678904" || c.bggID != 377470 {
		t.Errorf("contributed (%s, %d), want (712345678904, 377470)", c.barcode, c.bggID)
	}
}

func TestResolveAndAdd_AllVendorsMiss(t *testing.T) {
	f := newResolverFixture(t)

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "3558380020400")
	if err != nil {
		t.Fatalf("ResolveAndAdd() error = %v", err)
	}

	if result.Outcome != domain.AddOutcomeNeedsManualEntry {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeNeedsManualEntry)
	}
	if result.Game != nil {
		t.Error("no game should be created for an unresolved barcode")
	}

	// Nothing persisted.
	if _, err := f.store.GetGameByBarcode(context.Background(), "3558380020400"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("catalog lookup after miss = %v, want ErrNotFound", err)
	}
}

func TestResolveAndAdd_DegradedWithoutBGG(t *testing.T) {
	f := newResolverFixture(t)

	// Vendor hit, but BGG has zero candidates: vendor-only record.
	f.cascade.results["40123455"] = &lookup.Result{
		Product: lookup.Product{
			Name:   "Obscure Game",
			Source: domain.SourceUPCItemDB,
		},
	}

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "40123455")
	if err != nil {
		t.Fatalf("ResolveAndAdd() error = %v", err)
	}

	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}

	game := result.Game
	if game.Title != "Obscure Game" {
		t.Errorf("title = %q, want vendor name", game.Title)
	}
	if game.BGGID != nil {
		t.Errorf("bgg_id = %v, want nil for degraded record", game.BGGID)
	}
	if game.YearPublished != nil || game.MinPlayers != nil || game.Categories != nil {
		t.Error("degraded record must keep all BGG fields nil")
	}

	// No BGG id found, so nothing to contribute.
	time.Sleep(50 * time.Millisecond)
	if n := f.contributor.count(); n != 0 {
		t.Errorf("contribute-back called %d times without a BGG id, want 0", n)
	}
}

func TestResolveAndAdd_BGGFailureDegrades(t *testing.T) {
	f := newResolverFixture(t)

	f.cascade.results["40123455"] = &lookup.Result{
		Product: lookup.Product{Name: "Some Game", Source: domain.SourceBarcodeLookup},
	}
	f.metadata.searchErr = errors.New("bgg is down")

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "40123455")
	if err != nil {
		t.Fatalf("ResolveAndAdd() should absorb BGG failure, got %v", err)
	}
	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if result.Game.BGGID != nil {
		t.Error("BGG failure should yield a degraded record")
	}
}

func TestResolveAndAdd_DetailFetchFailurePropagates(t *testing.T) {
	f := newResolverFixture(t)

	// The detail fetch has no fallback: a timeout must fail the scan and
	// leave no catalog row, so a rescan can still enrich fully.
	f.cascade.results["618149323746"] = &lookup.Result{
		Product: lookup.Product{Name: "Sail", BGGID: intp(377470), Source: domain.SourceGameUPC},
	}
	f.metadata.getErr = context.DeadlineExceeded

	_, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ResolveAndAdd() error = %v, want context.DeadlineExceeded", err)
	}

	if _, err := f.store.GetGameByBarcode(context.Background(), "618149323746"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("catalog lookup after failed scan = %v, want ErrNotFound", err)
	}

	// The rescan runs the full pipeline again and enriches.
	f.metadata.getErr = nil
	f.metadata.things[377470] = sailThing()

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
	if err != nil {
		t.Fatalf("rescan error = %v", err)
	}
	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("rescan outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if result.Game.BGGID == nil || *result.Game.BGGID != 377470 {
		t.Errorf("rescan bgg_id = %v, want 377470", result.Game.BGGID)
	}
}

func TestResolveAndAdd_StaleVendorIDDegrades(t *testing.T) {
	f := newResolverFixture(t)

	// A vendor-supplied BGG id unknown upstream is not retryable; the scan
	// still succeeds with a vendor-only record.
	f.cascade.results["40123455"] = &lookup.Result{
		Product: lookup.Product{Name: "Some Game", BGGID: intp(999999999), Source: domain.SourceGameUPC},
	}

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "40123455")
	if err != nil {
		t.Fatalf("ResolveAndAdd() error = %v", err)
	}
	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if result.Game.BGGID != nil {
		t.Error("stale BGG id should yield a degraded record")
	}
}

func TestResolveAndAdd_CatalogShortCircuit(t *testing.T) {
	f := newResolverFixture(t)

	f.cascade.results["618149323746"] = &lookup.Result{
		Product: lookup.Product{Name: "Sail", BGGID: intp(377470), Source: domain.SourceGameUPC},
	}
	f.metadata.things[377470] = sailThing()

	first, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	callsAfterFirst := f.cascade.callCount()

	// Second user scanning the same barcode must not touch vendors or BGG.
	second := &domain.User{
		ID:           "user_test2",
		Email:        "second@example.com",
		PasswordHash: "$argon2id$fakehashfortest",
		Role:         domain.RoleMember,
		DisplayName:  "Second User",
	}
	second.CreatedAt = time.Now()
	second.UpdatedAt = second.CreatedAt
	if err := f.store.CreateUser(context.Background(), second); err != nil {
		t.Fatalf("seed second user: %v", err)
	}

	result, err := f.resolver.ResolveAndAdd(context.Background(), second.ID, "618149323746")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if result.Outcome != domain.AddOutcomeAdded {
		t.Errorf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if result.Game.ID != first.Game.ID {
		t.Errorf("second scan created a new catalog row: %s vs %s", result.Game.ID, first.Game.ID)
	}
	if f.cascade.callCount() != callsAfterFirst {
		t.Error("catalog hit must skip the vendor cascade")
	}
}

func TestResolveAndAdd_DuplicateScanSameUser(t *testing.T) {
	f := newResolverFixture(t)

	f.cascade.results["618149323746"] = &lookup.Result{
		Product: lookup.Product{Name: "Sail", BGGID: intp(377470), Source: domain.SourceGameUPC},
	}
	f.metadata.things[377470] = sailThing()

	first, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
	if err != nil {
		t.Fatalf("duplicate add should not error, got %v", err)
	}

	if result.Outcome != domain.AddOutcomeAlreadyInLibrary {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAlreadyInLibrary)
	}
	if result.Entry.ID != first.Entry.ID {
		t.Errorf("duplicate scan returned a different entry: %s vs %s", result.Entry.ID, first.Entry.ID)
	}

	entries, err := f.store.ListLibrary(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("list library: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("library has %d entries, want 1", len(entries))
	}
}

func TestResolveAndAdd_ConcurrentScansConverge(t *testing.T) {
	f := newResolverFixture(t)

	f.cascade.results["618149323746"] = &lookup.Result{
		Product: lookup.Product{Name: "Sail", BGGID: intp(377470), Source: domain.SourceGameUPC},
	}
	f.metadata.things[377470] = sailThing()

	const workers = 8
	results := make([]*AddResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.resolver.ResolveAndAdd(context.Background(), f.userID, "618149323746")
		}()
	}
	wg.Wait()

	gameID := ""
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if gameID == "" {
			gameID = results[i].Game.ID
		} else if results[i].Game.ID != gameID {
			t.Errorf("worker %d saw game %s, others saw %s", i, results[i].Game.ID, gameID)
		}
	}

	count, err := f.store.CountGames(context.Background())
	if err != nil {
		t.Fatalf("count games: %v", err)
	}
	if count != 1 {
		t.Errorf("catalog has %d rows, want 1", count)
	}

	entries, err := f.store.ListLibrary(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("list library: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("library has %d entries, want 1", len(entries))
	}
}

func TestResolveAndAdd_InvalidBarcode(t *testing.T) {
	f := newResolverFixture(t)

	for _, barcode := range []string{"", "1234567", "123456789012345", "61814932374a"} {
		if _, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, barcode); err == nil {
			t.Errorf("ResolveAndAdd(%q) should reject the barcode", barcode)
		}
	}

	if f.cascade.callCount() != 0 {
		t.Error("invalid barcodes must not reach the cascade")
	}
}

func TestResolveAndAdd_ContributeFailureSwallowed(t *testing.T) {
	f := newResolverFixture(t)

	f.contributor.err = errors.New("gameupc rejected the contribution")
	f.cascade.results["712345678904"] = &lookup.Result{
		Product: lookup.Product{Name: "Sail", Source: domain.SourceBarcodeLookup},
	}
	f.metadata.searches["Sail"] = []bgg.SearchResult{{ID: 377470, Name: "Sail"}}
	f.metadata.things[377470] = sailThing()

	result, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "712345678904")
	if err != nil {
		t.Fatalf("contribute-back failure must not propagate: %v", err)
	}
	if result.Outcome != domain.AddOutcomeAdded {
		t.Errorf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	f.contributor.wait(t)
}

func TestResolveBarcode_Preview(t *testing.T) {
	f := newResolverFixture(t)

	f.cascade.results["712345678904"] = &lookup.Result{
		Product: lookup.Product{Name: "Sail", Source: domain.SourceBarcodeLookup},
	}
	f.metadata.searches["Sail"] = []bgg.SearchResult{{ID: 377470, Name: "Sail"}}

	preview, err := f.resolver.ResolveBarcode(context.Background(), "712345678904")
	if err != nil {
		t.Fatalf("ResolveBarcode() error = %v", err)
	}

	if preview.InCatalog {
		t.Error("preview should not report a catalog hit")
	}
	if preview.Lookup == nil || preview.Lookup.Name != "Sail" {
		t.Error("preview missing vendor result")
	}
	if preview.Candidate == nil || preview.Candidate.ID != 377470 {
		t.Error("preview missing BGG candidate")
	}

	// Preview never persists anything.
	if count, _ := f.store.CountGames(context.Background()); count != 0 {
		t.Errorf("preview created %d catalog rows", count)
	}
}

func TestAddManual(t *testing.T) {
	f := newResolverFixture(t)

	input := ManualGameInput{
		Barcode:    "3558380020400",
		Title:      "Mysterium Park",
		Publisher:  "Libellud",
		MinPlayers: intp(2),
		MaxPlayers: intp(6),
	}

	result, err := f.resolver.AddManual(context.Background(), f.userID, input)
	if err != nil {
		t.Fatalf("AddManual() error = %v", err)
	}

	if result.Outcome != domain.AddOutcomeAdded {
		t.Fatalf("outcome = %q, want %q", result.Outcome, domain.AddOutcomeAdded)
	}
	if result.Game.Source != domain.SourceManual {
		t.Errorf("source = %q, want %q", result.Game.Source, domain.SourceManual)
	}
	if result.Game.BGGID != nil {
		t.Error("manual entry must not carry a BGG id")
	}

	// A later scan of the same barcode hits the catalog row.
	again, err := f.resolver.ResolveAndAdd(context.Background(), f.userID, "3558380020400")
	if err != nil {
		t.Fatalf("rescan after manual add: %v", err)
	}
	if again.Outcome != domain.AddOutcomeAlreadyInLibrary {
		t.Errorf("rescan outcome = %q, want %q", again.Outcome, domain.AddOutcomeAlreadyInLibrary)
	}
	if f.cascade.callCount() != 0 {
		t.Error("rescan of a manual entry must not reach the cascade")
	}
}

func TestAddManual_Invalid(t *testing.T) {
	f := newResolverFixture(t)

	tests := []ManualGameInput{
		{Barcode: "3558380020400"},
		{Title: "No Barcode"},
		{Barcode: "abc", Title: "Bad Code"},
		{Barcode: "12345", Title: "Too Few"},
	}

	for _, input := range tests {
		if _, err := f.resolver.AddManual(context.Background(), f.userID, input); err == nil {
			t.Errorf("AddManual(%+v) should fail validation", input)
		}
	}
}
