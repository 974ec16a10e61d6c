package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/http/response"
	"github.com/shelflineapp/shelfline-server/internal/service"
)

// handleResolveBarcode previews what a barcode would resolve to without
// touching the catalog or the user's library.
func (s *Server) handleResolveBarcode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	preview, err := s.services.Resolver.ResolveBarcode(r.Context(), req.Barcode)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, preview, s.logger)
}

// handleAddByBarcode runs the full resolution pipeline and links the game
// to the caller's library.
func (s *Server) handleAddByBarcode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.services.Resolver.ResolveAndAdd(r.Context(), getUserID(r.Context()), req.Barcode)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.writeAddResult(w, result)
}

// handleAddManual adds a game from user-supplied metadata after a barcode
// could not be resolved automatically.
func (s *Server) handleAddManual(w http.ResponseWriter, r *http.Request) {
	var input service.ManualGameInput
	if err := json.UnmarshalRead(r.Body, &input); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.services.Resolver.AddManual(r.Context(), getUserID(r.Context()), input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.writeAddResult(w, result)
}

// writeAddResult maps an add outcome onto an HTTP status. A fresh link is a
// creation, a duplicate scan is a notice, and an unresolvable barcode asks
// the client for manual entry.
func (s *Server) writeAddResult(w http.ResponseWriter, result *service.AddResult) {
	switch result.Outcome {
	case domain.AddOutcomeAdded:
		response.Created(w, result, s.logger)
	case domain.AddOutcomeAlreadyInLibrary:
		response.SuccessWithMessage(w, result, "Game is already in your library", s.logger)
	default:
		response.Success(w, result, s.logger)
	}
}
