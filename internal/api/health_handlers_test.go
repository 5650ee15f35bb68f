package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimelist/nimelist-server/internal/domain"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, testCatalog(), Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Contains(t, health.Components, "catalog")
	assert.Contains(t, health.Components, "store")
	assert.Contains(t, health.Components, "search")
	assert.Equal(t, "not loaded yet", health.Components["catalog"].Message, "health does not trigger a load")
	assert.NotEmpty(t, health.Components["store"].Latency)
}

func TestHealthCheck_DegradedOnFallback(t *testing.T) {
	tests := []struct {
		source domain.CatalogSource
		want   string
	}{
		{domain.SourceRemote, "healthy"},
		{domain.SourceLocal, "degraded"},
		{domain.SourceEmpty, "degraded"},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			loader := testCatalog()
			loader.source = tt.source
			ts := setupTestServer(t, loader, Options{})

			require.Equal(t, http.StatusOK, ts.api.Get("/api/v1/catalog").Code)

			resp := ts.api.Get("/health")
			health := decodeData[HealthResponse](t, resp)
			assert.Equal(t, tt.want, health.Status)
			assert.Equal(t, tt.want, health.Components["catalog"].Status)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t, testCatalog(), Options{CORSOrigins: []string{"https://nimelist.example"}})

	resp := ts.api.Do(http.MethodOptions, "/api/v1/watchlist/1",
		"Origin: https://nimelist.example",
		"Access-Control-Request-Method: PUT",
	)
	assert.Equal(t, "https://nimelist.example", resp.Header().Get("Access-Control-Allow-Origin"))
}
