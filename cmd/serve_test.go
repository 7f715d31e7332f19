package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twbmap/twb-cli/internal/model"
	"github.com/twbmap/twb-cli/internal/pipeline"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, newRouter(t.TempDir()), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLocationsEmptyWhenNothingPersisted(t *testing.T) {
	rec := get(t, newRouter(t.TempDir()), "/api/locations")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, rec.Body.String())
}

func TestLocationsServesCombined(t *testing.T) {
	dir := t.TempDir()
	loc := model.Location{
		ID:          "sheets-0a1b2c3d",
		Name:        "VivoCity",
		Coordinates: model.Coordinates{Lng: 103.8222, Lat: 1.2644},
		HasBidet:    true,
	}
	require.NoError(t, model.WriteCollection(filepath.Join(dir, pipeline.CombinedFile), []model.Location{loc}))

	rec := get(t, newRouter(dir), "/api/locations")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"VivoCity"`)
}

func TestLocationsPrefersEnriched(t *testing.T) {
	dir := t.TempDir()
	combined := model.Location{ID: "sheets-0a1b2c3d", Name: "Combined Only"}
	enriched := model.Location{ID: "sheets-0a1b2c3d", Name: "Enriched Copy"}
	require.NoError(t, model.WriteCollection(filepath.Join(dir, pipeline.CombinedFile), []model.Location{combined}))
	require.NoError(t, model.WriteCollection(filepath.Join(dir, pipeline.EnrichedFile), []model.Location{enriched}))

	rec := get(t, newRouter(dir), "/api/locations")
	assert.Contains(t, rec.Body.String(), "Enriched Copy")
	assert.NotContains(t, rec.Body.String(), "Combined Only")
}

func TestLocationsPayloadServedVerbatim(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"type":"FeatureCollection","features":[]}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, pipeline.EnrichedFile), raw, 0o644))

	rec := get(t, newRouter(dir), "/api/locations")
	assert.Equal(t, string(raw), rec.Body.String())
}
