package barcodelookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New("bl-key", time.Second, logger.Discard())
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
		wantBrand  string
		wantErr    error
	}{
		{
			name:       "hit",
			statusCode: http.StatusOK,
			body:       `{"products":[{"title":"Kingdomino","brand":"Blue Orange"}]}`,
			wantName:   "Kingdomino",
			wantBrand:  "Blue Orange",
		},
		{
			name:       "empty products",
			statusCode: http.StatusOK,
			body:       `{"products":[]}`,
			wantErr:    lookup.ErrNoMatch,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{"products":[]}`,
			wantErr:    lookup.ErrNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			product, err := client.Lookup(context.Background(), "3760175511103")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.Name != tt.wantName || product.Brand != tt.wantBrand {
				t.Errorf("got %q/%q, want %q/%q", product.Name, product.Brand, tt.wantName, tt.wantBrand)
			}
			// Key travels as a query parameter for this vendor.
			if gotQuery == "" || !containsParam(gotQuery, "key=bl-key") || !containsParam(gotQuery, "barcode=3760175511103") {
				t.Errorf("query = %q missing expected params", gotQuery)
			}
		})
	}
}

func containsParam(query, param string) bool {
	return slices.Contains(strings.Split(query, "&"), param)
}
