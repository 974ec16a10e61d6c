// Package main provides a tool to seed the database with test collection data.
//
// This creates a handful of catalog games, library entries, and logged plays
// so stats and search features have something to chew on during development.
//
// Usage:
//
//	DATA_PATH=~/Shelfline go run ./cmd/seed
//	DATA_PATH=~/Shelfline go run ./cmd/seed --create-user  # Also create a test user
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/auth"
	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/id"
	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/store/sqlite"
)

var createUser = flag.Bool("create-user", false, "Create a test user when none exist")

type seedGame struct {
	barcode    string
	title      string
	publisher  string
	year       int
	minPlayers int
	maxPlayers int
	playtime   int
	categories []string
	mechanics  []string
}

var seedGames = []seedGame{
	{
		barcode: "618149323746", title: "Sail", publisher: "Allplay",
		year: 2023, minPlayers: 2, maxPlayers: 2, playtime: 30,
		categories: []string{"Card Game", "Nautical"},
		mechanics:  []string{"Cooperative Game", "Trick-taking"},
	},
	{
		barcode: "824968719305", title: "Wingspan", publisher: "Stonemaier Games",
		year: 2019, minPlayers: 1, maxPlayers: 5, playtime: 70,
		categories: []string{"Animals"},
		mechanics:  []string{"Engine Building", "Card Drafting"},
	},
	{
		barcode: "841333108745", title: "Cascadia", publisher: "Flatout Games",
		year: 2021, minPlayers: 1, maxPlayers: 4, playtime: 45,
		categories: []string{"Animals", "Environmental"},
		mechanics:  []string{"Tile Placement", "Pattern Building"},
	},
	{
		barcode: "3558380062042", title: "7 Wonders Duel", publisher: "Repos Production",
		year: 2015, minPlayers: 2, maxPlayers: 2, playtime: 30,
		categories: []string{"Ancient", "Card Game"},
		mechanics:  []string{"Card Drafting", "Set Collection"},
	},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Shelfline")
	}
	dbPath := filepath.Join(dataPath, "shelfline.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, logger.Discard())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *createUser {
		seedUser(ctx, s)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	if len(users) == 0 {
		log.Fatal("No users found. Run server setup first or pass --create-user.")
	}

	for _, sg := range seedGames {
		game := buildGame(sg)
		stored, created, err := s.CreateOrGetGameByBarcode(ctx, game)
		if err != nil {
			log.Fatalf("Failed to upsert %q: %v", sg.title, err)
		}
		if created {
			fmt.Printf("Created catalog game %q (%s)\n", stored.Title, stored.ID)
		} else {
			fmt.Printf("Catalog already has %q (%s)\n", stored.Title, stored.ID)
		}

		for _, user := range users {
			seedEntry(ctx, s, user, stored)
		}
	}

	fmt.Println("Done.")
}

func buildGame(sg seedGame) *domain.Game {
	gameID, err := id.Generate("game")
	if err != nil {
		log.Fatalf("Failed to generate game id: %v", err)
	}

	now := time.Now()
	year, minP, maxP, playtime := sg.year, sg.minPlayers, sg.maxPlayers, sg.playtime
	return &domain.Game{
		ID:              gameID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Barcode:         sg.barcode,
		Title:           sg.title,
		Source:          domain.SourceManual,
		Publisher:       sg.publisher,
		YearPublished:   &year,
		MinPlayers:      &minP,
		MaxPlayers:      &maxP,
		PlaytimeMinutes: &playtime,
		Categories:      sg.categories,
		Mechanics:       sg.mechanics,
	}
}

func seedEntry(ctx context.Context, s *sqlite.Store, user *domain.User, game *domain.Game) {
	if _, err := s.GetLibraryEntryByGame(ctx, user.ID, game.ID); err == nil {
		return // already linked
	}

	entryID, err := id.Generate("entry")
	if err != nil {
		log.Fatalf("Failed to generate entry id: %v", err)
	}

	entry := domain.NewLibraryEntry(entryID, user.ID, game.ID)
	if err := s.CreateLibraryEntry(ctx, entry); err != nil {
		log.Fatalf("Failed to create library entry: %v", err)
	}

	// A few plays spread over the last two months.
	plays := rand.Intn(5)
	for range plays {
		playID, err := id.Generate("play")
		if err != nil {
			log.Fatalf("Failed to generate play id: %v", err)
		}
		playedAt := time.Now().Add(-time.Duration(rand.Intn(60*24)) * time.Hour)
		if err := s.AddPlay(ctx, entry.ID, &domain.Play{ID: playID, PlayedAt: playedAt}); err != nil {
			log.Fatalf("Failed to add play: %v", err)
		}
	}

	fmt.Printf("Linked %q to %s with %d plays\n", game.Title, user.Email, plays)
}

func seedUser(ctx context.Context, s *sqlite.Store) {
	count, err := s.CountUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}
	if count > 0 {
		return
	}

	userID, err := id.Generate("user")
	if err != nil {
		log.Fatalf("Failed to generate user id: %v", err)
	}

	hash, err := auth.HashPassword("shelfline-dev")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        "dev@example.com",
		PasswordHash: hash,
		IsRoot:       true,
		Role:         domain.RoleAdmin,
		DisplayName:  "Dev User",
	}
	if err := s.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Created test user %s (password: shelfline-dev)\n", user.Email)
}
