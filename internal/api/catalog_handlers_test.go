package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflineapp/shelfline-server/internal/auth"
	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/id"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
)

// memberToken creates a non-admin user directly in the store and mints an
// access token for it.
func memberToken(t *testing.T, ts *testServer) string {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		ID:          userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Email:       "member@example.com",
		Role:        domain.RoleMember,
		DisplayName: "Member",
	}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	token, err := tokens.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func TestGetGame(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodGet, "/api/v1/catalog/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeEnvelope(t, w).Data.(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	gameID := items[0].(map[string]any)["id"].(string)

	w = ts.request(t, http.MethodGet, "/api/v1/catalog/"+gameID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	game := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "Sail", game["title"])
	assert.Equal(t, "618149323746", game["barcode"])
}

func TestUpdateGame_Admin(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodGet, "/api/v1/catalog/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := decodeEnvelope(t, w).Data.(map[string]any)["items"].([]any)[0].(map[string]any)["id"].(string)

	w = ts.request(t, http.MethodPatch, "/api/v1/admin/catalog/"+gameID, token, map[string]any{
		"title":     "Sail (Second Printing)",
		"publisher": "Allplay Games",
	})

	require.Equal(t, http.StatusOK, w.Code)
	game := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "Sail (Second Printing)", game["title"])
	assert.Equal(t, "Allplay Games", game["publisher"])
}

func TestUpdateGame_MemberForbidden(t *testing.T) {
	ts := setupTestServer(t)
	rootToken := ts.setupRootUser(t)
	addSailEntry(t, ts, rootToken)

	w := ts.request(t, http.MethodGet, "/api/v1/catalog/", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := decodeEnvelope(t, w).Data.(map[string]any)["items"].([]any)[0].(map[string]any)["id"].(string)

	member := memberToken(t, ts)
	w = ts.request(t, http.MethodPatch, "/api/v1/admin/catalog/"+gameID, member, map[string]any{
		"title": "Vandalized",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteGame_RefusedWhileReferenced(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodGet, "/api/v1/catalog/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	gameID := decodeEnvelope(t, w).Data.(map[string]any)["items"].([]any)[0].(map[string]any)["id"].(string)

	// Refused while a library entry still points at the game.
	w = ts.request(t, http.MethodDelete, "/api/v1/admin/catalog/"+gameID, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// After the entry goes away the delete succeeds.
	w = ts.request(t, http.MethodDelete, "/api/v1/library/"+entryID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/v1/admin/catalog/"+gameID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/catalog/"+gameID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchCatalog(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPost, "/api/v1/admin/search/reindex", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeEnvelope(t, w).Data.(map[string]any)["indexed"])

	w = ts.request(t, http.MethodGet, "/api/v1/search/?q=sail", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, float64(1), result["total"])
}

func TestSearchBGG(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	year := 2023
	ts.bgg.searches["sail"] = []bgg.SearchResult{
		{ID: 377470, Name: "Sail", YearPublished: &year},
	}

	w := ts.request(t, http.MethodGet, "/api/v1/search/bgg?q=sail", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	results := decodeEnvelope(t, w).Data.([]any)
	require.Len(t, results, 1)
	assert.Equal(t, float64(377470), results[0].(map[string]any)["id"])
}

func TestSearchBGG_MissingQuery(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	w := ts.request(t, http.MethodGet, "/api/v1/search/bgg", token, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCover(t *testing.T) {
	ts := setupTestServer(t)

	require.NoError(t, ts.storage.Save("game_cover1", []byte("\xff\xd8\xff\xe0fakejpeg")))

	w := ts.request(t, http.MethodGet, "/api/v1/covers/game_cover1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	// Revalidation with the same ETag short-circuits.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/covers/game_cover1", http.NoBody)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestGetCover_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/covers/game_missing", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
