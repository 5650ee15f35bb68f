package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/search"
)

func TestSearchFullText(t *testing.T) {
	ts := setupTestServer(t, testCatalog(), Options{})

	resp := ts.api.Get("/api/v1/search/fulltext?q=bebop")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	res := decodeData[search.Result](t, resp)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "anime-1", res.Hits[0].ID)
	assert.Equal(t, "bebop", res.Query)
	require.NotNil(t, res.Facets, "facets are on by default")
}

func TestSearchFullText_Filters(t *testing.T) {
	ts := setupTestServer(t, testCatalog(), Options{})

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"characters only", "/api/v1/search/fulltext?q=luffy&types=character", []string{"character-40"}},
		{"genre filter", "/api/v1/search/fulltext?genres=drama&types=anime", []string{"anime-2"}},
		{"format filter sorted by score", "/api/v1/search/fulltext?anime_types=TV&min_score=7&sort=score", []string{"anime-1", "anime-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path + "&facets=false")
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			res := decodeData[search.Result](t, resp)
			got := make([]string, len(res.Hits))
			for i, h := range res.Hits {
				got[i] = h.ID
			}
			assert.Equal(t, tt.want, got)
			assert.Nil(t, res.Facets)
		})
	}
}

func TestSearchFullText_RejectsUnknownSort(t *testing.T) {
	ts := setupTestServer(t, testCatalog(), Options{})

	resp := ts.api.Get("/api/v1/search/fulltext?q=bebop&sort=hype")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	env := decodeEnvelope(t, resp)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
	assert.NotEmpty(t, env.Error.Details)
}
