package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shelflineapp/shelfline-server/internal/http/response"
	"github.com/shelflineapp/shelfline-server/internal/search"
)

// handleSearch runs a full-text search over the local catalog.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Search.Search(r.Context(), parseSearchParams(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleSearchBGG proxies a title search to BoardGameGeek.
func (s *Server) handleSearchBGG(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, "q is required", s.logger)
		return
	}

	results, err := s.services.Search.SearchBGG(r.Context(), query)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, results, s.logger)
}

// handleReindex rebuilds the search index from the catalog.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.services.Search.RebuildIndex(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"indexed": count}, s.logger)
}

// parseSearchParams builds search parameters from the query string.
func parseSearchParams(r *http.Request) search.Params {
	q := r.URL.Query()
	params := search.DefaultParams()

	params.Query = strings.TrimSpace(q.Get("q"))
	params.Categories = splitCSV(q.Get("categories"))
	params.Mechanics = splitCSV(q.Get("mechanics"))

	if v, err := strconv.Atoi(q.Get("players")); err == nil {
		params.Players = v
	}
	if v, err := strconv.Atoi(q.Get("max_playtime")); err == nil {
		params.MaxPlaytime = v
	}
	if v, err := strconv.Atoi(q.Get("min_year")); err == nil {
		params.MinYear = v
	}
	if v, err := strconv.Atoi(q.Get("max_year")); err == nil {
		params.MaxYear = v
	}
	if v := q.Get("expansions"); v != "" {
		params.Expansions = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		params.Offset = v
	}
	if v := q.Get("sort"); v != "" {
		params.SortBy = v
	}
	if v := q.Get("order"); v != "" {
		params.SortOrder = v
	}

	return params
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
