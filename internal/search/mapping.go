package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping.
//
// Titles use the standard analyzer: romanized Japanese titles stem badly.
// Long text uses English stemming. Genres, types and statuses are keywords
// so they can be filtered and faceted exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields ---

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	altFieldMapping := bleve.NewTextFieldMapping()
	altFieldMapping.Analyzer = standard.Name
	altFieldMapping.Store = true
	altFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("alt_names", altFieldMapping)

	// Synopsis and about text: searchable, too large to store.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	// --- Keyword fields ---

	for _, field := range []string{"id", "doc_type", "genres", "anime_type", "status"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		docMapping.AddFieldMappingsAt(field, kw)
	}

	// --- Numeric fields ---

	for _, field := range []string{"mal_id", "year", "score", "members", "favorites"} {
		num := bleve.NewNumericFieldMapping()
		num.Store = true
		docMapping.AddFieldMappingsAt(field, num)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
