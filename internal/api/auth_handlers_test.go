package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Success(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":        "admin@example.com",
		"password":     "SecurePassword123",
		"display_name": "Admin",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])

	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", user["email"])
	assert.Equal(t, true, user["is_root"])
	assert.Equal(t, "admin", user["role"])
}

func TestSetup_AlreadyConfigured(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":        "second@example.com",
		"password":     "SecurePassword123",
		"display_name": "Second",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
}

func TestSetup_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing email",
			body: map[string]any{"password": "SecurePassword123", "display_name": "A"},
		},
		{
			name: "invalid email",
			body: map[string]any{"email": "not-an-email", "password": "SecurePassword123", "display_name": "A"},
		},
		{
			name: "password too short",
			body: map[string]any{"email": "a@example.com", "password": "short", "display_name": "A"},
		},
		{
			name: "missing display name",
			body: map[string]any{"email": "a@example.com", "password": "SecurePassword123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.request(t, http.MethodPost, "/api/v1/auth/setup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "root@example.com",
		"password": "correct-horse-battery",
	})

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["session_id"])
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "root@example.com",
		"password": "wrong-password-here",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupRootUser(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_Rotation(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":        "root@example.com",
		"password":     "correct-horse-battery",
		"display_name": "Root",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]any)
	oldRefresh := data["refresh_token"].(string)

	// Rotate once.
	w = ts.request(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": oldRefresh,
	})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decodeEnvelope(t, w).Data.(map[string]any)
	assert.NotEmpty(t, rotated["refresh_token"])
	assert.NotEqual(t, oldRefresh, rotated["refresh_token"])

	// Old refresh token is dead after rotation.
	w = ts.request(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": oldRefresh,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/v1/auth/setup", "", map[string]any{
		"email":        "root@example.com",
		"password":     "correct-horse-battery",
		"display_name": "Root",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]any)

	w = ts.request(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]any{
		"session_id": data["session_id"],
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The session's refresh token no longer works.
	w = ts.request(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": data["refresh_token"],
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.setupRootUser(t)

	w := ts.request(t, http.MethodGet, "/api/v1/users/me", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	user, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "root@example.com", user["email"])
	assert.Equal(t, "Root", user["display_name"])
	assert.Nil(t, user["password_hash"])
}

func TestGetCurrentUser_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/users/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
