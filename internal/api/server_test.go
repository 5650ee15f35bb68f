package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/search"
	"github.com/nimelist/nimelist-server/internal/service"
	"github.com/nimelist/nimelist-server/internal/sse"
	"github.com/nimelist/nimelist-server/internal/store"
	"github.com/nimelist/nimelist-server/internal/validation"
	"github.com/nimelist/nimelist-server/internal/watchlist"
)

var testNow = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// staticLoader serves a fixed catalog.
type staticLoader struct {
	source domain.CatalogSource
	anime  []domain.AnimeRecord
	chars  []domain.CharacterRecord
}

func (l staticLoader) Fetch(context.Context) *domain.Catalog {
	return &domain.Catalog{
		Anime:      l.anime,
		Characters: l.chars,
		Source:     l.source,
		LoadID:     "load-" + string(l.source),
		LoadedAt:   testNow,
	}
}

func testCatalog() staticLoader {
	return staticLoader{
		source: domain.SourceRemote,
		anime: []domain.AnimeRecord{
			{ID: 1, Title: "Cowboy Bebop", TitleJapanese: "カウボーイビバップ", Score: 8.75, Members: 1900000, Favorites: 80000,
				Type: domain.TypeTV, Status: domain.StatusFinishedAiring, Aired: domain.DateRange{From: day(1998, time.April, 3)},
				Image: "https://cdn.example/bebop.jpg", Episodes: 26,
				Genres: []domain.Genre{{Name: "Action"}, {Name: "Sci-Fi"}}},
			{ID: 2, Title: "Your Name", Score: 8.83, Members: 2700000, Favorites: 90000, Type: domain.TypeMovie,
				Status: domain.StatusFinishedAiring, Aired: domain.DateRange{From: day(2016, time.August, 26)},
				Image: domain.PlaceholderImage, Episodes: 1,
				Genres: []domain.Genre{{Name: "Drama"}}},
			{ID: 3, Title: "Winter Show", Score: 7.1, Members: 50000, Type: domain.TypeTV, Airing: true,
				Status: domain.StatusCurrentlyAiring, Aired: domain.DateRange{From: day(2024, time.December, 20)},
				Genres: []domain.Genre{{Name: "Action"}}},
			{ID: 4, Title: "Spring Sequel", Type: domain.TypeTV,
				Status: domain.StatusNotYetAired, Aired: domain.DateRange{From: day(2025, time.April, 5)}},
			{ID: 5, Title: "Summer Movie", Type: domain.TypeMovie,
				Status: domain.StatusNotYetAired, Aired: domain.DateRange{From: day(2025, time.July, 18)}},
		},
		chars: []domain.CharacterRecord{
			{ID: 1, Name: "Spike Spiegel", Favorites: 45000},
			{ID: 40, Name: "Monkey D. Luffy", Favorites: 130000},
		},
	}
}

type testServer struct {
	api    humatest.TestAPI
	server *Server
	svc    *Services
}

func setupTestServer(t *testing.T, loader staticLoader, opts Options) *testServer {
	t.Helper()

	index, err := search.NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	records, err := store.Open(store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = records.Close() })

	events := sse.NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go events.Start(ctx)
	t.Cleanup(cancel)

	catalog := service.NewCatalogService(loader, service.CatalogOptions{
		TTL:     time.Hour,
		Indexer: index,
		Events:  events,
		Clock:   func() time.Time { return testNow },
	})
	svc := &Services{
		Catalog: catalog,
		Search:  service.NewSearchService(index, catalog, discardLogger()),
		WatchList: service.NewWatchListService(
			watchlist.New(records, watchlist.WithClock(func() time.Time { return testNow })),
			catalog, validation.New(), discardLogger(),
		),
		Events: events,
	}
	svc.WatchList.SetEventEmitter(events)

	srv := NewServer(svc, opts)
	t.Cleanup(srv.Close)

	return &testServer{api: humatest.Wrap(t, srv.API()), server: srv, svc: svc}
}

// envelope mirrors APIEnvelope with raw data for decoding in tests.
type envelope struct {
	Version int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorBody      `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.Version)
	return env
}

// decodeData unwraps a successful envelope into T.
func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, resp)
	require.True(t, env.Success, resp.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func ids(list []domain.AnimeRecord) []int {
	out := make([]int, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}
