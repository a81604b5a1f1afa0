package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/datastore"
	"github.com/wildscout/wildscout-go/internal/enrich"
	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/observability"
	"github.com/wildscout/wildscout-go/internal/search"
	"github.com/wildscout/wildscout-go/internal/sources"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

var testCoord = geo.Coordinate{Lat: 51.5074, Lon: -0.1278}

type fixedGeocoder struct {
	coord geo.Coordinate
	err   error
}

func (g fixedGeocoder) Geocode(_ context.Context, _ string) (geo.Coordinate, error) {
	if g.err != nil {
		return geo.Coordinate{}, g.err
	}
	return g.coord, nil
}

type fixedSource struct {
	recs []sources.Record
}

func (fixedSource) Name() sources.Source { return sources.SourceINaturalist }

func (s fixedSource) FetchNearby(_ context.Context, _ geo.Coordinate, _ float64) ([]sources.Record, error) {
	return s.recs, nil
}

type controllerOptions struct {
	geocodeErr  error
	withStore   bool
	freeLimit   int
	withMetrics bool
}

func newTestController(t *testing.T, opts controllerOptions) *Controller {
	t.Helper()

	settings := &conf.Settings{Version: "test"}
	settings.Search.DefaultRadius = 8.0
	settings.Search.DefaultUnit = conf.UnitMiles
	settings.Search.FreeSearchLimit = opts.freeLimit

	enricher, err := enrich.New(nil)
	require.NoError(t, err)

	providers := []sources.Provider{fixedSource{recs: []sources.Record{{
		Origin: sources.SourceINaturalist,
		INaturalist: &sources.INatRecord{
			CommonName: "Red Fox",
			TaxonName:  "Vulpes vulpes",
			Coordinate: testCoord,
		},
	}}}}

	var metrics *observability.Metrics
	if opts.withMetrics {
		metrics, err = observability.NewMetrics()
		require.NoError(t, err)
	}

	svc := search.New(settings, fixedGeocoder{coord: testCoord, err: opts.geocodeErr}, providers, enricher, metrics)

	var ds datastore.Interface
	if opts.withStore {
		settings.Output.SQLite.Enabled = true
		settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "api_test.db")
		store := &datastore.SQLiteStore{Settings: settings}
		require.NoError(t, store.Open())
		t.Cleanup(func() { require.NoError(t, store.Close()) })
		ds = store
	}

	e := echo.New()
	c := New(e, ds, settings, svc, metrics)
	t.Cleanup(c.Shutdown)
	return c
}

func doJSON(c *Controller, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	c := newTestController(t, controllerOptions{})

	rec := doJSON(c, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestHandleSearch(t *testing.T) {
	c := newTestController(t, controllerOptions{})

	rec := doJSON(c, http.MethodPost, "/api/v1/search",
		`{"location_text":"London"}`, map[string]string{"X-Caller-ID": "c1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Sightings, 1)
	assert.Equal(t, "Red Fox", result.Sightings[0].CommonName)
	assert.NotEmpty(t, result.RequestID)
	assert.Len(t, result.MapView.Markers, 1)
}

func TestHandleSearchValidation(t *testing.T) {
	c := newTestController(t, controllerOptions{})

	rec := doJSON(c, http.MethodPost, "/api/v1/search",
		`{"location_text":"London","radius":5,"unit":"furlongs"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearchRateLimited(t *testing.T) {
	c := newTestController(t, controllerOptions{freeLimit: 1})

	headers := map[string]string{"X-Caller-ID": "limited"}
	rec := doJSON(c, http.MethodPost, "/api/v1/search", `{"location_text":"London"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(c, http.MethodPost, "/api/v1/search", `{"location_text":"London"}`, headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// An Authorization header marks the caller authenticated and bypasses
	// the free-tier limit.
	headers[echo.HeaderAuthorization] = "Bearer token"
	rec = doJSON(c, http.MethodPost, "/api/v1/search", `{"location_text":"London"}`, headers)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSearchGeocoderFailure(t *testing.T) {
	geocodeErr := errors.Newf("upstream unreachable").
		Component("geocoder").
		Category(errors.CategoryGeocoding).
		Build()
	c := newTestController(t, controllerOptions{geocodeErr: geocodeErr})

	rec := doJSON(c, http.MethodPost, "/api/v1/search", `{"location_text":"London"}`, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestSavedSightingLifecycle(t *testing.T) {
	c := newTestController(t, controllerOptions{withStore: true})
	headers := map[string]string{"X-Caller-ID": "c1"}

	rec := doJSON(c, http.MethodPost, "/api/v1/sightings",
		`{"common_name":"Red Fox","scientific_name":"Vulpes vulpes","latitude":51.5,"longitude":-0.12,"rarity":"common"}`,
		headers)
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved datastore.SavedSighting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotZero(t, saved.ID)

	rec = doJSON(c, http.MethodGet, "/api/v1/sightings", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []datastore.SavedSighting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	// Other callers do not see it.
	otherHeaders := map[string]string{"X-Caller-ID": "other"}
	rec = doJSON(c, http.MethodGet, "/api/v1/sightings", "", otherHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)

	// Nor can they fetch or delete it by ID.
	rec = doJSON(c, http.MethodGet, "/api/v1/sightings/1", "", otherHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(c, http.MethodDelete, "/api/v1/sightings/1", "", otherHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(c, http.MethodGet, "/api/v1/sightings/1", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(c, http.MethodDelete, "/api/v1/sightings/1", "", headers)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(c, http.MethodGet, "/api/v1/sightings/1", "", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveSightingValidation(t *testing.T) {
	c := newTestController(t, controllerOptions{withStore: true})

	rec := doJSON(c, http.MethodPost, "/api/v1/sightings", `{"scientific_name":"Vulpes vulpes"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(c, http.MethodGet, "/api/v1/sightings/notanumber", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSightingEndpointsWithoutStore(t *testing.T) {
	c := newTestController(t, controllerOptions{})

	rec := doJSON(c, http.MethodGet, "/api/v1/sightings", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecentSearches(t *testing.T) {
	c := newTestController(t, controllerOptions{withStore: true})
	headers := map[string]string{"X-Caller-ID": "c1"}

	rec := doJSON(c, http.MethodPost, "/api/v1/search", `{"location_text":"London"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(c, http.MethodGet, "/api/v1/searches/recent", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []datastore.SearchLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "London", logs[0].LocationText)
	assert.Equal(t, 1, logs[0].ResultCount)

	rec = doJSON(c, http.MethodGet, "/api/v1/searches/recent?limit=bogus", "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	c := newTestController(t, controllerOptions{withMetrics: true})

	rec := doJSON(c, http.MethodPost, "/api/v1/search", `{"location_text":"London"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(c, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `search_operations_total{status="success"} 1`)
}
