package bgg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelflineapp/shelfline-server/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("", logger.Discard())
	c.baseURL = srv.URL
	c.http = srv.Client()
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

const searchSailXML = `<?xml version="1.0" encoding="utf-8"?>
<items total="2" termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">
	<item type="boardgame" id="377470">
		<name type="primary" value="Sail"/>
		<yearpublished value="2023"/>
	</item>
	<item type="boardgame" id="245934">
		<name type="primary" value="Sail to India"/>
		<yearpublished value="2013"/>
	</item>
</items>`

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("query"); got != "Sail" {
			t.Errorf("query = %q, want %q", got, "Sail")
		}
		if got := q.Get("type"); got != "boardgame,boardgameexpansion" {
			t.Errorf("type = %q, want %q", got, "boardgame,boardgameexpansion")
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(searchSailXML))
	})

	results, err := client.Search(context.Background(), "Sail")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != 377470 {
		t.Errorf("first result ID = %d, want 377470", results[0].ID)
	}
	if results[0].Name != "Sail" {
		t.Errorf("first result Name = %q, want %q", results[0].Name, "Sail")
	}
	if results[0].YearPublished == nil || *results[0].YearPublished != 2023 {
		t.Errorf("first result YearPublished = %v, want 2023", results[0].YearPublished)
	}
}

func TestClient_Search_NoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<items total="0"></items>`))
	})

	results, err := client.Search(context.Background(), "zzzzzz")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestClient_Search_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "Sail")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

const thingSailXML = `<?xml version="1.0" encoding="utf-8"?>
<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">
	<item type="boardgame" id="377470">
		<thumbnail>https://cf.geekdo-images.com/thumb/sail.jpg</thumbnail>
		<image>https://cf.geekdo-images.com/original/sail.jpg</image>
		<name type="primary" sortindex="1" value="Sail"/>
		<name type="alternate" sortindex="1" value="Segeln"/>
		<description>A two-player cooperative trick-taking game about sailing &amp; survival.</description>
		<yearpublished value="2023"/>
		<minplayers value="2"/>
		<maxplayers value="2"/>
		<playingtime value="30"/>
		<minage value="12"/>
		<link type="boardgamecategory" id="1002" value="Card Game"/>
		<link type="boardgamecategory" id="1039" value="Nautical"/>
		<link type="boardgamemechanic" id="2023" value="Cooperative Game"/>
		<link type="boardgamemechanic" id="2009" value="Trick-taking"/>
		<link type="boardgamefamily" id="70360" value="Players: Two-Player Only Games"/>
		<link type="boardgamepublisher" id="29313" value="Allplay"/>
		<link type="boardgamepublisher" id="51439" value="Gute Spiele"/>
	</item>
</items>`

func TestClient_GetGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/thing" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "377470" {
			t.Errorf("id = %q, want %q", got, "377470")
		}
		w.Write([]byte(thingSailXML))
	})

	thing, err := client.GetGame(context.Background(), 377470)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	if thing.ID != 377470 {
		t.Errorf("ID = %d, want 377470", thing.ID)
	}
	if thing.Name != "Sail" {
		t.Errorf("Name = %q, want %q (primary name)", thing.Name, "Sail")
	}
	if thing.Description != "A two-player cooperative trick-taking game about sailing & survival." {
		t.Errorf("Description = %q", thing.Description)
	}
	if thing.YearPublished == nil || *thing.YearPublished != 2023 {
		t.Errorf("YearPublished = %v, want 2023", thing.YearPublished)
	}
	if thing.MinPlayers == nil || *thing.MinPlayers != 2 {
		t.Errorf("MinPlayers = %v, want 2", thing.MinPlayers)
	}
	if thing.PlaytimeMinutes == nil || *thing.PlaytimeMinutes != 30 {
		t.Errorf("PlaytimeMinutes = %v, want 30", thing.PlaytimeMinutes)
	}
	if thing.MinAge == nil || *thing.MinAge != 12 {
		t.Errorf("MinAge = %v, want 12", thing.MinAge)
	}
	if len(thing.Categories) != 2 || thing.Categories[0] != "Card Game" {
		t.Errorf("Categories = %v", thing.Categories)
	}
	if len(thing.Mechanics) != 2 || thing.Mechanics[1] != "Trick-taking" {
		t.Errorf("Mechanics = %v", thing.Mechanics)
	}
	if len(thing.Families) != 1 {
		t.Errorf("Families = %v", thing.Families)
	}
	if thing.Publisher != "Allplay" {
		t.Errorf("Publisher = %q, want first publisher %q", thing.Publisher, "Allplay")
	}
	if thing.Expansion {
		t.Error("Expansion = true, want false")
	}
	if got := thing.CoverURL(); got != "https://cf.geekdo-images.com/original/sail.jpg" {
		t.Errorf("CoverURL = %q, want full image over thumbnail", got)
	}
}

func TestClient_GetGame_SparseItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<items>
	<item type="boardgameexpansion" id="999001">
		<name type="primary" value="Sail: Promo Pack"/>
		<yearpublished value="0"/>
	</item>
</items>`))
	})

	thing, err := client.GetGame(context.Background(), 999001)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if thing.YearPublished != nil {
		t.Errorf("YearPublished = %v, want nil for zero value", thing.YearPublished)
	}
	if thing.MinPlayers != nil || thing.MaxPlayers != nil {
		t.Error("player counts should be nil when absent")
	}
	if thing.Categories != nil {
		t.Errorf("Categories = %v, want nil when no links present", thing.Categories)
	}
	if !thing.Expansion {
		t.Error("Expansion = false, want true for boardgameexpansion type")
	}
}

func TestClient_GetGame_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse"></items>`))
	})

	_, err := client.GetGame(context.Background(), 123456789)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClient_GetGame_InvalidID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid id")
	})

	_, err := client.GetGame(context.Background(), 0)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestClient_GetGame_Queued(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := client.GetGame(context.Background(), 377470)
	if !errors.Is(err, ErrQueued) {
		t.Fatalf("err = %v, want ErrQueued", err)
	}
}

func TestClient_AuthTokenHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`<items total="0"></items>`))
	})
	client.token = "bgg-test-token"

	if _, err := client.Search(context.Background(), "Sail"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotAuth != "Bearer bgg-test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`<items total="0"></items>`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.Search(ctx, "Sail"); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
