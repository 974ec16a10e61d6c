package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelflineapp/shelfline-server/internal/http/response"
	"github.com/shelflineapp/shelfline-server/internal/service"
)

// handleListCatalog returns a page of catalog games.
func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Catalog.List(r.Context(), parsePaginationParams(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleGetGame returns a single catalog game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.services.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// handleUpdateGame applies an admin edit to a catalog game.
func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateGameRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	game, err := s.services.Catalog.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// handleDeleteGame removes a catalog game. Refused while any library still
// references it.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
