package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a catalog search query.
type Params struct {
	Query string // User's search query

	// Filters
	Categories  []string // Exact category tags (OR across values)
	Mechanics   []string // Exact mechanic tags (OR across values)
	Players     int      // Games playable at this player count
	MaxPlaytime int      // Maximum playtime in minutes
	MinYear     int
	MaxYear     int
	Expansions  string // "include" (default), "exclude", "only"

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "recent", "year"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	Highlight     bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitempty"`
}

// Hit represents a single search result.
type Hit struct {
	ID              string            `json:"id"`
	Score           float64           `json:"score"`
	Title           string            `json:"title"`
	Barcode         string            `json:"barcode,omitempty"`
	Publisher       string            `json:"publisher,omitempty"`
	YearPublished   int               `json:"year_published,omitempty"`
	MinPlayers      int               `json:"min_players,omitempty"`
	MaxPlayers      int               `json:"max_players,omitempty"`
	PlaytimeMinutes int               `json:"playtime_minutes,omitempty"`
	Expansion       bool              `json:"expansion,omitempty"`
	Highlights      map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts for filter UIs.
type Facets struct {
	Categories []FacetCount `json:"categories,omitempty"`
	Mechanics  []FacetCount `json:"mechanics,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query against the catalog index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("categories", bleve.NewFacetRequest("categories", 20))
		searchRequest.AddFacet("mechanics", bleve.NewFacetRequest("mechanics", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
	}

	searchRequest.Fields = []string{
		"id", "title", "barcode", "publisher", "year_published",
		"min_players", "max_players", "playtime_minutes", "expansion",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if b, ok := hit.Fields["barcode"].(string); ok {
			h.Barcode = b
		}
		if p, ok := hit.Fields["publisher"].(string); ok {
			h.Publisher = p
		}
		if y, ok := hit.Fields["year_published"].(float64); ok {
			h.YearPublished = int(y)
		}
		if n, ok := hit.Fields["min_players"].(float64); ok {
			h.MinPlayers = int(n)
		}
		if n, ok := hit.Fields["max_players"].(float64); ok {
			h.MaxPlayers = int(n)
		}
		if n, ok := hit.Fields["playtime_minutes"].(float64); ok {
			h.PlaytimeMinutes = int(n)
		}
		if e, ok := hit.Fields["expansion"].(bool); ok {
			h.Expansion = e
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Title match with highest boost
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		// Publisher match
		publisherMatch := bleve.NewMatchQuery(params.Query)
		publisherMatch.SetField("publisher")
		publisherMatch.SetBoost(1.5)
		textQueries = append(textQueries, publisherMatch)

		// Fuzzy matching for typo tolerance on title
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Category filter (exact match, OR across tags)
	if len(params.Categories) > 0 {
		queries = append(queries, termDisjunction("categories", params.Categories))
	}

	// Mechanic filter
	if len(params.Mechanics) > 0 {
		queries = append(queries, termDisjunction("mechanics", params.Mechanics))
	}

	// Player count filter: min_players <= n AND max_players >= n.
	// Games with unknown bounds are excluded, which is what a filter UI
	// expects.
	if params.Players > 0 {
		n := float64(params.Players)
		low := float64(1)

		minQuery := bleve.NewNumericRangeQuery(&low, &n)
		minQuery.SetField("min_players")
		queries = append(queries, minQuery)

		high := math.MaxFloat64
		maxQuery := bleve.NewNumericRangeQuery(&n, &high)
		maxQuery.SetField("max_players")
		queries = append(queries, maxQuery)
	}

	if params.MaxPlaytime > 0 {
		low := float64(1)
		high := float64(params.MaxPlaytime)
		rangeQuery := bleve.NewNumericRangeQuery(&low, &high)
		rangeQuery.SetField("playtime_minutes")
		queries = append(queries, rangeQuery)
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		low := float64(params.MinYear)
		high := float64(params.MaxYear)
		if params.MaxYear == 0 {
			high = 3000
		}
		rangeQuery := bleve.NewNumericRangeQuery(&low, &high)
		rangeQuery.SetField("year_published")
		queries = append(queries, rangeQuery)
	}

	switch params.Expansions {
	case "exclude":
		q := bleve.NewBoolFieldQuery(false)
		q.SetField("expansion")
		queries = append(queries, q)
	case "only":
		q := bleve.NewBoolFieldQuery(true)
		q.SetField("expansion")
		queries = append(queries, q)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

func termDisjunction(field string, values []string) query.Query {
	termQueries := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		termQueries[i] = tq
	}
	return bleve.NewDisjunctionQuery(termQueries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "year":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"year_published"})
		} else {
			req.SortBy([]string{"-year_published"})
		}
	default:
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if categoryFacet, ok := result.Facets["categories"]; ok {
		for _, term := range categoryFacet.Terms.Terms() {
			facets.Categories = append(facets.Categories, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if mechanicFacet, ok := result.Facets["mechanics"]; ok {
		for _, term := range mechanicFacet.Terms.Terms() {
			facets.Mechanics = append(facets.Mechanics, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
