package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/query"
)

func (s *Server) registerCharacterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "topCharacters",
		Method:      http.MethodGet,
		Path:        "/api/v1/characters/top",
		Summary:     "Top characters",
		Description: "Characters ordered by favorites",
		Tags:        []string{"Characters"},
	}, s.handleTopCharacters)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Genre tally across the catalog, most common first",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)
}

// CharacterListOutput contains characters.
type CharacterListOutput struct {
	Body []domain.CharacterRecord
}

func (s *Server) handleTopCharacters(ctx context.Context, input *LimitInput) (*CharacterListOutput, error) {
	list, err := s.services.Catalog.TopCharacters(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &CharacterListOutput{Body: list}, nil
}

// GenreListOutput contains the genre tally.
type GenreListOutput struct {
	Body []query.GenreCount
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*GenreListOutput, error) {
	genres, err := s.services.Catalog.Genres(ctx)
	if err != nil {
		return nil, err
	}
	return &GenreListOutput{Body: genres}, nil
}
