package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelflineapp/shelfline-server/internal/http/response"
)

// handleGetCover serves a game's cover image with ETag revalidation.
func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	data, etag, err := s.services.Covers.Open(chi.URLParam(r, "gameID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	quoted := `"` + etag + `"`
	w.Header().Set("ETag", quoted)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if r.Header.Get("If-None-Match") == quoted {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write cover response", "error", err)
	}
}
