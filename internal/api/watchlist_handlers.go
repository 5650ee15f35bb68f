package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/service"
)

func (s *Server) registerWatchListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listWatchList",
		Method:      http.MethodGet,
		Path:        "/api/v1/watchlist",
		Summary:     "List watch-list",
		Description: "Returns watch-list entries in insertion order, optionally filtered by status",
		Tags:        []string{"Watch list"},
	}, s.handleListWatchList)

	huma.Register(s.api, huma.Operation{
		OperationID: "watchListCounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/watchlist/counts",
		Summary:     "Watch-list counts",
		Description: "Entry totals per status",
		Tags:        []string{"Watch list"},
	}, s.handleWatchListCounts)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertWatchListEntry",
		Method:      http.MethodPut,
		Path:        "/api/v1/watchlist/{id}",
		Summary:     "Save watch-list entry",
		Description: "Adds a title or changes its status. The title summary is taken from the catalog when omitted.",
		Tags:        []string{"Watch list"},
	}, s.handleUpsertWatchListEntry)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removeWatchListEntry",
		Method:        http.MethodDelete,
		Path:          "/api/v1/watchlist/{id}",
		Summary:       "Remove watch-list entry",
		Description:   "Removes a title. Removing a title that is not listed succeeds.",
		Tags:          []string{"Watch list"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveWatchListEntry)
}

// ListWatchListInput filters the watch-list.
type ListWatchListInput struct {
	Status string `query:"status" doc:"watching, completed, planning, dropped or all"`
}

// WatchListOutput contains watch-list entries.
type WatchListOutput struct {
	Body []domain.WatchListEntry
}

func (s *Server) handleListWatchList(ctx context.Context, input *ListWatchListInput) (*WatchListOutput, error) {
	entries, err := s.services.WatchList.List(ctx, input.Status)
	if err != nil {
		return nil, err
	}
	return &WatchListOutput{Body: entries}, nil
}

// WatchListCountsOutput contains per-status totals.
type WatchListCountsOutput struct {
	Body domain.WatchListCounts
}

func (s *Server) handleWatchListCounts(ctx context.Context, _ *struct{}) (*WatchListCountsOutput, error) {
	counts, err := s.services.WatchList.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &WatchListCountsOutput{Body: counts}, nil
}

// WatchAnimeBody is the optional title summary sent with an upsert.
type WatchAnimeBody struct {
	Title    string `json:"title" minLength:"1"`
	Image    string `json:"image,omitempty"`
	Episodes int    `json:"episodes,omitempty" minimum:"0"`
	Type     string `json:"type,omitempty"`
}

// UpsertWatchListInput is the upsert request.
type UpsertWatchListInput struct {
	ID   int `path:"id" minimum:"1" doc:"MyAnimeList id"`
	Body struct {
		Status string          `json:"status" doc:"watching, completed, planning or dropped"`
		Anime  *WatchAnimeBody `json:"anime,omitempty" doc:"Title summary; looked up in the catalog when omitted"`
	}
}

// WatchListEntryOutput contains one saved entry.
type WatchListEntryOutput struct {
	Body domain.WatchListEntry
}

func (s *Server) handleUpsertWatchListEntry(ctx context.Context, input *UpsertWatchListInput) (*WatchListEntryOutput, error) {
	req := service.UpsertWatchRequest{
		AnimeID: input.ID,
		Status:  domain.WatchStatus(input.Body.Status),
	}
	if a := input.Body.Anime; a != nil {
		req.Anime = &domain.AnimeSummary{
			ID:       input.ID,
			Title:    a.Title,
			Image:    a.Image,
			Episodes: a.Episodes,
			Type:     domain.AnimeType(a.Type),
		}
	}

	entry, err := s.services.WatchList.Upsert(ctx, req)
	if err != nil {
		return nil, err
	}
	return &WatchListEntryOutput{Body: entry}, nil
}

// RemoveWatchListInput selects the entry to remove.
type RemoveWatchListInput struct {
	ID int `path:"id" minimum:"1" doc:"MyAnimeList id"`
}

func (s *Server) handleRemoveWatchListEntry(ctx context.Context, input *RemoveWatchListInput) (*struct{}, error) {
	if err := s.services.WatchList.Remove(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
