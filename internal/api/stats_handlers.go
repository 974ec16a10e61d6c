package api

import (
	"net/http"

	"github.com/shelflineapp/shelfline-server/internal/http/response"
)

// handleGetStats returns play statistics for the caller's library.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Stats.GetStats(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}
