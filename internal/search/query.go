package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders accepted by Params.SortBy.
const (
	SortRelevance  = "relevance"
	SortScore      = "score"
	SortPopularity = "popularity"
	SortYear       = "year"
	SortTitle      = "title"
)

// Facet field names accepted by Params.FacetFields.
const (
	FacetDocType   = "doc_type"
	FacetGenres    = "genres"
	FacetAnimeType = "anime_type"
)

// Params configures a search query.
type Params struct {
	Query string
	Types []DocType // empty means all

	// Filters
	Genres     []string // any of, case-insensitive
	AnimeTypes []string // any of, exact
	MinYear    int
	MaxYear    int
	MinScore   float64

	Limit  int
	Offset int

	SortBy string

	IncludeFacets bool
	FacetFields   []string
	Highlight     bool
}

// DefaultParams returns the defaults used by the HTTP API.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		SortBy:        SortRelevance,
		IncludeFacets: true,
		FacetFields:   []string{FacetDocType, FacetGenres, FacetAnimeType},
	}
}

// Result is one page of hits.
type Result struct {
	Query  string  `json:"query"`
	Total  uint64  `json:"total"`
	TookMs int64   `json:"took_ms"`
	Hits   []Hit   `json:"hits"`
	Facets *Facets `json:"facets,omitempty"`
}

// Hit is a single matching document.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	MalID      int               `json:"mal_id"`
	Relevance  float64           `json:"relevance"`
	Name       string            `json:"name"`
	AltNames   []string          `json:"alt_names,omitempty"`
	AnimeType  string            `json:"anime_type,omitempty"`
	Genres     []string          `json:"genres,omitempty"`
	Year       int               `json:"year,omitempty"`
	Score      float64           `json:"score,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Facets holds term counts for the requested facet fields.
type Facets struct {
	Types      []FacetCount `json:"types,omitempty"`
	Genres     []FacetCount `json:"genres,omitempty"`
	AnimeTypes []FacetCount `json:"anime_types,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

var storedFields = []string{"doc_type", "mal_id", "name", "alt_names", "anime_type", "genres", "year", "score"}

// Search executes a query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params.SortBy)
	if params.IncludeFacets {
		for _, field := range params.FacetFields {
			req.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("alt_names")
	}
	req.Fields = storedFields

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{
			ID:        h.ID,
			Relevance: h.Score,
			Type:      DocType(stringField(h.Fields, "doc_type")),
			MalID:     int(numberField(h.Fields, "mal_id")),
			Name:      stringField(h.Fields, "name"),
			AltNames:  stringsField(h.Fields, "alt_names"),
			AnimeType: stringField(h.Fields, "anime_type"),
			Genres:    stringsField(h.Fields, "genres"),
			Year:      int(numberField(h.Fields, "year")),
			Score:     numberField(h.Fields, "score"),
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if params.IncludeFacets {
		out.Facets = extractFacets(res)
	}
	return out, nil
}

// buildQuery combines the text query and filters with AND.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		altMatch := bleve.NewMatchQuery(q)
		altMatch.SetField("alt_names")
		altMatch.SetBoost(2.0)

		textMatch := bleve.NewMatchQuery(q)
		textMatch.SetField("text")
		textMatch.SetBoost(0.5)

		text := []query.Query{nameMatch, altMatch, textMatch}

		// Typo tolerance and autocomplete apply to single words only.
		if word := strings.ToLower(q); !strings.ContainsAny(word, " \t") {
			fuzzy := bleve.NewFuzzyQuery(word)
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("name")
			fuzzy.SetBoost(0.8)
			text = append(text, fuzzy)

			if len(word) >= 2 {
				prefix := bleve.NewPrefixQuery(word)
				prefix.SetField("name")
				prefix.SetBoost(0.5)
				text = append(text, prefix)
			}
		}
		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		terms := make([]string, len(params.Types))
		for i, t := range params.Types {
			terms[i] = string(t)
		}
		queries = append(queries, anyTerm("doc_type", terms))
	}
	if len(params.Genres) > 0 {
		terms := make([]string, len(params.Genres))
		for i, g := range params.Genres {
			terms[i] = normalizeKeyword(g)
		}
		queries = append(queries, anyTerm("genres", terms))
	}
	if len(params.AnimeTypes) > 0 {
		queries = append(queries, anyTerm("anime_type", params.AnimeTypes))
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 3000
		}
		inclusive := true
		yearRange := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		yearRange.SetField("year")
		queries = append(queries, yearRange)
	}
	if params.MinScore > 0 {
		lo := params.MinScore
		scoreRange := bleve.NewNumericRangeQuery(&lo, nil)
		scoreRange.SetField("score")
		queries = append(queries, scoreRange)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

func anyTerm(field string, terms []string) query.Query {
	qs := make([]query.Query, len(terms))
	for i, t := range terms {
		tq := bleve.NewTermQuery(t)
		tq.SetField(field)
		qs[i] = tq
	}
	return bleve.NewDisjunctionQuery(qs...)
}

func addSorting(req *bleve.SearchRequest, sortBy string) {
	switch sortBy {
	case SortScore:
		req.SortBy([]string{"-score", "-_score"})
	case SortPopularity:
		req.SortBy([]string{"-members", "-_score"})
	case SortYear:
		req.SortBy([]string{"-year", "-_score"})
	case SortTitle:
		req.SortBy([]string{"name"})
	default:
		req.SortBy([]string{"-_score"})
	}
}

func extractFacets(res *bleve.SearchResult) *Facets {
	facets := &Facets{}
	terms := func(field string) []FacetCount {
		f, ok := res.Facets[field]
		if !ok || f.Terms == nil {
			return nil
		}
		var out []FacetCount
		for _, term := range f.Terms.Terms() {
			out = append(out, FacetCount{Value: term.Term, Count: term.Count})
		}
		return out
	}
	facets.Types = terms(FacetDocType)
	facets.Genres = terms(FacetGenres)
	facets.AnimeTypes = terms(FacetAnimeType)
	return facets
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// stringsField reads a multi-valued stored field. Bleve returns a bare
// string when the field holds a single value.
func stringsField(fields map[string]any, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func numberField(fields map[string]any, name string) float64 {
	f, _ := fields[name].(float64)
	return f
}
