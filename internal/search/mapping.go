package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for game documents.
//
// Priorities:
//  1. Fast full-text title search with English stemming
//  2. Exact keyword matching for category/mechanic/family filters
//  3. Numeric range queries for players, playtime, and year
//  4. Term vectors on the title for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Publisher names stay unstemmed; "Czech Games" should not match "game"
	publisherFieldMapping := bleve.NewTextFieldMapping()
	publisherFieldMapping.Analyzer = simple.Name
	publisherFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("publisher", publisherFieldMapping)

	// Searchable but not stored (large)
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	barcodeFieldMapping := bleve.NewTextFieldMapping()
	barcodeFieldMapping.Analyzer = keyword.Name
	barcodeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("barcode", barcodeFieldMapping)

	// Keyword analyzer keeps multi-word tags intact ("Trick-taking",
	// "Worker Placement")
	categoriesFieldMapping := bleve.NewTextFieldMapping()
	categoriesFieldMapping.Analyzer = keyword.Name
	categoriesFieldMapping.Store = true
	categoriesFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("categories", categoriesFieldMapping)

	mechanicsFieldMapping := bleve.NewTextFieldMapping()
	mechanicsFieldMapping.Analyzer = keyword.Name
	mechanicsFieldMapping.Store = true
	mechanicsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("mechanics", mechanicsFieldMapping)

	familiesFieldMapping := bleve.NewTextFieldMapping()
	familiesFieldMapping.Analyzer = keyword.Name
	familiesFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("families", familiesFieldMapping)

	// --- Boolean / numeric fields (filters, range queries, sorting) ---

	expansionFieldMapping := bleve.NewBooleanFieldMapping()
	expansionFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("expansion", expansionFieldMapping)

	for _, field := range []string{
		"year_published", "min_players", "max_players",
		"playtime_minutes", "created_at", "updated_at",
	} {
		numericFieldMapping := bleve.NewNumericFieldMapping()
		numericFieldMapping.Store = true
		docMapping.AddFieldMappingsAt(field, numericFieldMapping)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
