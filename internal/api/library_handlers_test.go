package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addSailEntry adds Sail to the library and returns the entry ID.
func addSailEntry(t *testing.T, ts *testServer, token string) string {
	t.Helper()

	seedSail(ts)
	w := ts.request(t, http.MethodPost, "/api/v1/library/", token, map[string]any{
		"barcode": "618149323746",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]any)
	entry := data["entry"].(map[string]any)
	return entry["id"].(string)
}

func TestListLibrary(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodGet, "/api/v1/library/", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	entries, ok := decodeEnvelope(t, w).Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry := entries[0].(map[string]any)
	game, ok := entry["game"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Sail", game["title"])
}

func TestGetEntry(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodGet, "/api/v1/library/"+entryID, token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	entry := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, entryID, entry["id"])
}

func TestGetEntry_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	w := ts.request(t, http.MethodGet, "/api/v1/library/entry_missing", token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateEntry(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPatch, "/api/v1/library/"+entryID, token, map[string]any{
		"favorite": true,
		"ranking":  "high",
		"notes":    "Great two-player game",
	})

	require.Equal(t, http.StatusOK, w.Code)
	entry := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, true, entry["favorite"])
	assert.Equal(t, "high", entry["ranking"])
	assert.Equal(t, "Great two-player game", entry["notes"])
}

func TestUpdateEntry_InvalidRanking(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPatch, "/api/v1/library/"+entryID, token, map[string]any{
		"ranking": "amazing",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveEntry_KeepsCatalogGame(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodDelete, "/api/v1/library/"+entryID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/library/"+entryID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The shared catalog still has the game.
	w = ts.request(t, http.MethodGet, "/api/v1/catalog/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeEnvelope(t, w).Data.(map[string]any)
	items, ok := result["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestLogPlay(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPost, "/api/v1/library/"+entryID+"/plays", token, map[string]any{
		"played_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
	})

	require.Equal(t, http.StatusCreated, w.Code)
	entry := decodeEnvelope(t, w).Data.(map[string]any)
	plays, ok := entry["plays"].([]any)
	require.True(t, ok)
	require.Len(t, plays, 1)
	assert.NotEmpty(t, plays[0].(map[string]any)["id"])
}

func TestLogPlay_FutureDate(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPost, "/api/v1/library/"+entryID+"/plays", token, map[string]any{
		"played_at": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemovePlay(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPost, "/api/v1/library/"+entryID+"/plays", token, map[string]any{})
	require.Equal(t, http.StatusCreated, w.Code)
	entry := decodeEnvelope(t, w).Data.(map[string]any)
	playID := entry["plays"].([]any)[0].(map[string]any)["id"].(string)

	path := fmt.Sprintf("/api/v1/library/%s/plays/%s", entryID, playID)
	w = ts.request(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/library/"+entryID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entry = decodeEnvelope(t, w).Data.(map[string]any)
	assert.Empty(t, entry["plays"])
}

func TestStats(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)
	entryID := addSailEntry(t, ts, token)

	w := ts.request(t, http.MethodPost, "/api/v1/library/"+entryID+"/plays", token, map[string]any{})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, float64(1), stats["total_plays"])
}
