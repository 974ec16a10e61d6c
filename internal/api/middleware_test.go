package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth_HeaderFormats(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "bearer without token", header: "Bearer"},
		{name: "garbage token", header: "Bearer not-a-real-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.server.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t)

	var sawTooMany bool
	for range 30 {
		w := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"email":    "nobody@example.com",
			"password": "whatever-password",
		})
		if w.Code == http.StatusTooManyRequests {
			sawTooMany = true
			break
		}
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	assert.True(t, sawTooMany, "expected the auth limiter to trip")
}

func TestRateLimit_DoesNotAffectOtherEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	for range 30 {
		w := ts.request(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
}
