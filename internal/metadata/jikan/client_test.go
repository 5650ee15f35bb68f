package jikan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Options{BaseURL: server.URL + "/v4", RequestsPerSec: 100, HTTPClient: server.Client()})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestClient_TopAnime(t *testing.T) {
	fixture := loadFixture(t, "top_anime.json")

	tests := []struct {
		name       string
		response   []byte
		statusCode int
		wantCount  int
		wantErr    error
	}{
		{
			name:       "successful fetch",
			response:   fixture,
			statusCode: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "empty page",
			response:   []byte(`{"data": []}`),
			statusCode: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "missing data array",
			response:   []byte(`{"status": 200}`),
			statusCode: http.StatusOK,
			wantErr:    ErrBadResponse,
		},
		{
			name:       "not json",
			response:   []byte(`<html>maintenance</html>`),
			statusCode: http.StatusOK,
			wantErr:    ErrBadResponse,
		},
		{
			name:       "rate limited",
			response:   []byte(`{"status": 429, "type": "RateLimitException"}`),
			statusCode: http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
		},
		{
			name:       "server error",
			statusCode: http.StatusServiceUnavailable,
			wantErr:    ErrServer,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantErr:    ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v4/top/anime", r.URL.Path)
				assert.Equal(t, "10", r.URL.Query().Get("limit"))
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					_, _ = w.Write(tt.response)
				}
			})

			results, err := client.TopAnime(context.Background(), 10)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				var jikanErr *Error
				require.True(t, errors.As(err, &jikanErr))
				assert.Equal(t, "topAnime", jikanErr.Op)
				assert.Equal(t, tt.statusCode, jikanErr.Status)
				return
			}

			require.NoError(t, err)
			assert.Len(t, results, tt.wantCount)
		})
	}
}

func TestClient_TopAnime_ParsesFields(t *testing.T) {
	fixture := loadFixture(t, "top_anime.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(fixture)
	})

	results, err := client.TopAnime(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	frieren := results[0]
	assert.Equal(t, 52991, frieren.MalID)
	assert.Equal(t, "Sousou no Frieren", frieren.Title)
	require.NotNil(t, frieren.Score)
	assert.InDelta(t, 9.3, *frieren.Score, 0.001)
	require.NotNil(t, frieren.Episodes)
	assert.Equal(t, 28, *frieren.Episodes)
	assert.True(t, frieren.Aired.From.Valid)
	assert.Equal(t, time.Date(2023, time.September, 29, 0, 0, 0, 0, time.UTC), frieren.Aired.From.Time)
	assert.Equal(t, "https://cdn.myanimelist.net/images/anime/1015/138006l.jpg", frieren.Images.Best())
	assert.Len(t, frieren.Genres, 3)
	assert.Equal(t, "Madhouse", frieren.Studios[0].Name)

	fma := results[1]
	assert.Nil(t, fma.Synopsis)
	assert.Equal(t, "https://cdn.myanimelist.net/images/anime/1208/94745.jpg", fma.Images.Best())
}

func TestClient_SeasonNow_NullFields(t *testing.T) {
	fixture := loadFixture(t, "season_now.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/seasons/now", r.URL.Path)
		_, _ = w.Write(fixture)
	})

	results, err := client.SeasonNow(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, results, 2)

	dandadan := results[0]
	assert.Nil(t, dandadan.Score)
	assert.Nil(t, dandadan.Episodes)
	assert.Nil(t, dandadan.TitleEnglish)
	assert.False(t, dandadan.Aired.To.Valid)
	assert.Empty(t, dandadan.Images.Best())
	assert.True(t, dandadan.Airing)
}

func TestClient_TopCharacters(t *testing.T) {
	fixture := loadFixture(t, "top_characters.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/top/characters", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		_, _ = w.Write(fixture)
	})

	results, err := client.TopCharacters(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Luffy Monkey D.", results[0].Name)
	require.NotNil(t, results[1].Favorites)
	assert.Equal(t, 175000, *results[1].Favorites)
	assert.Nil(t, results[1].About)
}

func TestClient_LimitClamped(t *testing.T) {
	var got atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	_, err := client.TopAnime(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, "25", got.Load())

	_, err = client.TopAnime(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "25", got.Load())
}

func TestClient_TransportError(t *testing.T) {
	client, err := New(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.TopCharacters(context.Background(), 5)
	require.Error(t, err)

	var jikanErr *Error
	require.True(t, errors.As(err, &jikanErr))
	assert.Zero(t, jikanErr.Status)
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SeasonNow(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDate_Lenient(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  time.Time
	}{
		{`"2024-12-15T00:00:00+00:00"`, true, time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)},
		{`"2024-12-15T09:00:00+09:00"`, true, time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)},
		{`"2025-01-10"`, true, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)},
		{`null`, false, time.Time{}},
		{`""`, false, time.Time{}},
		{`"soon"`, false, time.Time{}},
		{`12345`, false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.in), &d))
			assert.Equal(t, tt.valid, d.Valid)
			if tt.valid {
				assert.True(t, tt.want.Equal(d.Time))
				assert.NotNil(t, d.Ptr())
			} else {
				assert.Nil(t, d.Ptr())
			}
		})
	}
}
