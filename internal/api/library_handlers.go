package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelflineapp/shelfline-server/internal/http/response"
	"github.com/shelflineapp/shelfline-server/internal/service"
)

// handleListLibrary returns all of the caller's library entries.
func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	entries, err := s.services.Library.List(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleGetEntry returns a single library entry owned by the caller.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.services.Library.Get(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entry, s.logger)
}

// handleUpdateEntry updates per-user fields on a library entry.
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateEntryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	entry, err := s.services.Library.Update(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entry, s.logger)
}

// handleRemoveEntry removes an entry from the caller's library. The catalog
// game stays behind.
func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Library.Remove(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleLogPlay records a play against a library entry. An omitted or zero
// played_at means "now".
func (s *Server) handleLogPlay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayedAt time.Time `json:"played_at,omitzero"`
	}
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	entry, err := s.services.Library.LogPlay(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), req.PlayedAt)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, entry, s.logger)
}

// handleRemovePlay deletes a previously logged play.
func (s *Server) handleRemovePlay(w http.ResponseWriter, r *http.Request) {
	err := s.services.Library.RemovePlay(
		r.Context(),
		getUserID(r.Context()),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "playID"),
	)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
