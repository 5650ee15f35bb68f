package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/text/language"

	"github.com/nimelist/nimelist-server/internal/domain"
	domainerrors "github.com/nimelist/nimelist-server/internal/errors"
	"github.com/nimelist/nimelist-server/internal/query"
	"github.com/nimelist/nimelist-server/internal/service"
)

// rankedView is one of the fixed ranked lists under /api/v1/anime.
type rankedView struct {
	id, path, summary, description string
	fetch                          func(*service.CatalogService, context.Context, int) ([]domain.AnimeRecord, error)
}

var rankedViews = []rankedView{
	{"topAnime", "top", "Top anime", "Highest scored titles", (*service.CatalogService).TopAnime},
	{"topAiring", "airing", "Top airing", "Highest scored titles currently airing", (*service.CatalogService).TopAiring},
	{"topUpcoming", "upcoming", "Upcoming", "Titles starting after now, soonest first", (*service.CatalogService).TopUpcoming},
	{"topMovies", "movies", "Top movies", "Highest scored movies", (*service.CatalogService).TopMovies},
	{"mostPopular", "popular", "Most popular", "Titles with the most members", (*service.CatalogService).MostPopular},
	{"mostFavorited", "favorited", "Most favorited", "Titles with the most favorites", (*service.CatalogService).MostFavorited},
}

func (s *Server) registerAnimeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "browseAnime",
		Method:      http.MethodGet,
		Path:        "/api/v1/anime",
		Summary:     "Browse anime",
		Description: "Filters the catalog by type, airing status and genre, then sorts it",
		Tags:        []string{"Anime"},
	}, s.handleBrowseAnime)

	for _, v := range rankedViews {
		huma.Register(s.api, huma.Operation{
			OperationID: v.id,
			Method:      http.MethodGet,
			Path:        "/api/v1/anime/" + v.path,
			Summary:     v.summary,
			Description: v.description,
			Tags:        []string{"Anime"},
		}, s.rankedHandler(v))
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "seasonalAnime",
		Method:      http.MethodGet,
		Path:        "/api/v1/anime/seasonal",
		Summary:     "Seasonal anime",
		Description: "Best titles that started in a season. Defaults to the current season.",
		Tags:        []string{"Anime"},
	}, s.handleSeasonal)

	huma.Register(s.api, huma.Operation{
		OperationID: "animeSchedule",
		Method:      http.MethodGet,
		Path:        "/api/v1/anime/schedule",
		Summary:     "Release schedule",
		Description: "Upcoming titles grouped by release month, labelled for the requested locale",
		Tags:        []string{"Anime"},
	}, s.handleSchedule)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAnime",
		Method:      http.MethodGet,
		Path:        "/api/v1/anime/{id}",
		Summary:     "Get anime",
		Description: "Returns one catalog record",
		Tags:        []string{"Anime"},
	}, s.handleGetAnime)
}

// LimitInput is the limit shared by the ranked views.
type LimitInput struct {
	Limit int `query:"limit" default:"10" minimum:"-1" maximum:"100" doc:"Maximum results; -1 returns all"`
}

// AnimeListOutput contains a list of catalog records.
type AnimeListOutput struct {
	Body []domain.AnimeRecord
}

func (s *Server) rankedHandler(v rankedView) func(context.Context, *LimitInput) (*AnimeListOutput, error) {
	return func(ctx context.Context, input *LimitInput) (*AnimeListOutput, error) {
		list, err := v.fetch(s.services.Catalog, ctx, input.Limit)
		if err != nil {
			return nil, err
		}
		return &AnimeListOutput{Body: list}, nil
	}
}

// BrowseAnimeInput holds the browse selections.
type BrowseAnimeInput struct {
	Type   string `query:"type" doc:"Release format, e.g. TV or Movie"`
	Status string `query:"status" doc:"airing, complete or upcoming"`
	Genre  string `query:"genre" doc:"Genre name, case-insensitive"`
	Sort   string `query:"sort" doc:"score (default), popularity, favorites or newest"`
	Limit  int    `query:"limit" minimum:"0" doc:"Maximum results; 0 returns all"`
}

func (s *Server) handleBrowseAnime(ctx context.Context, input *BrowseAnimeInput) (*AnimeListOutput, error) {
	list, err := s.services.Catalog.Browse(ctx, query.BrowseFilter{
		Type:   domain.AnimeType(input.Type),
		Status: query.BrowseStatus(input.Status),
		Genre:  input.Genre,
		Sort:   query.SortKey(input.Sort),
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &AnimeListOutput{Body: list}, nil
}

// GetAnimeInput selects one record.
type GetAnimeInput struct {
	ID int `path:"id" minimum:"1" doc:"MyAnimeList id"`
}

// AnimeOutput contains one catalog record.
type AnimeOutput struct {
	Body domain.AnimeRecord
}

func (s *Server) handleGetAnime(ctx context.Context, input *GetAnimeInput) (*AnimeOutput, error) {
	anime, err := s.services.Catalog.Anime(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AnimeOutput{Body: anime}, nil
}

// SeasonalInput selects a season.
type SeasonalInput struct {
	Season string `query:"season" doc:"winter, spring, summer or fall; defaults to the current season"`
	Year   int    `query:"year" minimum:"0" doc:"Season year; defaults to the season's current or next occurrence"`
	Limit  int    `query:"limit" default:"10" minimum:"-1" maximum:"100" doc:"Maximum results; -1 returns all"`
}

func (s *Server) handleSeasonal(ctx context.Context, input *SeasonalInput) (*AnimeListOutput, error) {
	season, err := parseSeason(input.Season)
	if err != nil {
		return nil, err
	}
	list, err := s.services.Catalog.Seasonal(ctx, season, input.Year, input.Limit)
	if err != nil {
		return nil, err
	}
	return &AnimeListOutput{Body: list}, nil
}

// ScheduleInput narrows the schedule and picks label language.
type ScheduleInput struct {
	Locale         string `query:"locale" doc:"BCP 47 tag for month labels; falls back to Accept-Language"`
	AcceptLanguage string `header:"Accept-Language"`
	Season         string `query:"season" doc:"Only titles starting in this season"`
	Year           int    `query:"year" minimum:"0"`
}

// ScheduleOutput contains the release months.
type ScheduleOutput struct {
	Body []query.MonthGroup
}

func (s *Server) handleSchedule(ctx context.Context, input *ScheduleInput) (*ScheduleOutput, error) {
	season, err := parseSeason(input.Season)
	if err != nil {
		return nil, err
	}

	locale := input.Locale
	if locale == "" {
		locale = preferredLanguage(input.AcceptLanguage)
	}

	groups, err := s.services.Catalog.Schedule(ctx, service.ScheduleOptions{
		Locale: locale,
		Season: season,
		Year:   input.Year,
	})
	if err != nil {
		return nil, err
	}
	return &ScheduleOutput{Body: groups}, nil
}

func parseSeason(raw string) (domain.Season, error) {
	if raw == "" {
		return "", nil
	}
	season, err := domain.ParseSeason(raw)
	if err != nil {
		return "", domainerrors.ValidationWithDetails(err.Error(), map[string]string{"season": "must be winter, spring, summer or fall"})
	}
	return season, nil
}

// preferredLanguage returns the highest weighted tag of an Accept-Language
// header, or "" when there is none.
func preferredLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
