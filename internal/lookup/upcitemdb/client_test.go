package upcitemdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New("", time.Second, logger.Discard())
	client.baseURL = server.URL
	client.http = server.Client()
	return client
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantName   string
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:       "hit",
			statusCode: http.StatusOK,
			body:       `{"code":"OK","items":[{"title":"Azul","brand":"Next Move Games"}]}`,
			wantName:   "Azul",
		},
		{
			name:       "ok code with empty items",
			statusCode: http.StatusOK,
			body:       `{"code":"OK","items":[]}`,
			wantErr:    lookup.ErrNoMatch,
		},
		{
			name:       "invalid upc code",
			statusCode: http.StatusOK,
			body:       `{"code":"INVALID_UPC","items":[]}`,
			wantErr:    lookup.ErrNoMatch,
		},
		{
			name:       "rate limited upstream",
			statusCode: http.StatusTooManyRequests,
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			product, err := client.Lookup(context.Background(), "681706781709")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantAnyErr {
				if err == nil || errors.Is(err, lookup.ErrNoMatch) {
					t.Fatalf("expected a transport error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.Name != tt.wantName {
				t.Errorf("name = %q, want %q", product.Name, tt.wantName)
			}
		})
	}
}

func TestClient_KeylessTrialOmitsHeaders(t *testing.T) {
	var gotUserKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUserKey = r.Header.Get("user_key")
		w.Write([]byte(`{"code":"OK","items":[{"title":"Root"}]}`))
	})

	if _, err := client.Lookup(context.Background(), "602573655061"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUserKey != "" {
		t.Errorf("user_key header should be absent, got %q", gotUserKey)
	}
}
