package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nimelist/nimelist-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchTitles",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search titles",
		Description: "Case-insensitive substring match on the main, English and Japanese titles. A blank query returns nothing.",
		Tags:        []string{"Search"},
	}, s.handleSearchTitles)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchFullText",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/fulltext",
		Summary:     "Full-text search",
		Description: "Ranked search over anime and characters with fuzzy and prefix matching, filters and facets",
		Tags:        []string{"Search"},
	}, s.handleSearchFullText)
}

// SearchTitlesInput holds the substring query.
type SearchTitlesInput struct {
	Query string `query:"q" maxLength:"200" doc:"Text to look for in titles"`
}

func (s *Server) handleSearchTitles(ctx context.Context, input *SearchTitlesInput) (*AnimeListOutput, error) {
	list, err := s.services.Catalog.SearchTitles(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &AnimeListOutput{Body: list}, nil
}

// FullTextInput holds the full-text query and filters.
type FullTextInput struct {
	Query      string   `query:"q" maxLength:"200" doc:"Search text; empty matches everything"`
	Types      []string `query:"types" doc:"Document types: anime, character"`
	Genres     []string `query:"genres" doc:"Any of these genres"`
	AnimeTypes []string `query:"anime_types" doc:"Any of these release formats"`
	MinYear    int      `query:"min_year" minimum:"0"`
	MaxYear    int      `query:"max_year" minimum:"0"`
	MinScore   float64  `query:"min_score" minimum:"0" maximum:"10"`
	Sort       string   `query:"sort" default:"relevance" enum:"relevance,score,popularity,year,title"`
	Limit      int      `query:"limit" default:"20" minimum:"1" maximum:"100"`
	Offset     int      `query:"offset" minimum:"0"`
	Facets     bool     `query:"facets" default:"true" doc:"Include genre, type and format facets"`
	Highlight  bool     `query:"highlight" doc:"Include highlighted name fragments"`
}

// SearchOutput contains one page of full-text hits.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearchFullText(ctx context.Context, input *FullTextInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.Genres = input.Genres
	params.AnimeTypes = input.AnimeTypes
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.MinScore = input.MinScore
	params.SortBy = input.Sort
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets
	params.Highlight = input.Highlight
	for _, t := range input.Types {
		params.Types = append(params.Types, search.DocType(t))
	}

	res, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}
