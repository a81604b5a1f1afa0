// Package search orchestrates the sighting search pipeline: resolve the
// query location, fan out to the sighting sources concurrently, normalize,
// enrich and classify the records, filter plants and return the remainder
// sorted by distance.
package search

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wildscout/wildscout-go/internal/classify"
	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/enrich"
	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/geocoder"
	"github.com/wildscout/wildscout-go/internal/logging"
	"github.com/wildscout/wildscout-go/internal/observability"
	"github.com/wildscout/wildscout-go/internal/sighting"
	"github.com/wildscout/wildscout-go/internal/sources"
)

// Package-level logger specific to the search service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "search.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "search", serviceLevelVar)
	if err != nil {
		logging.ForService("search").Warn("Failed to initialize search file logger, service logging disabled",
			"path", logFilePath, "error", err)
		logger = logging.NewDiscardLogger("search", serviceLevelVar)
		closeLogger = func() error { return nil }
	}
}

// ErrRateLimitExceeded is returned when an unauthenticated caller has exhausted
// the free search quota. No network calls are made in that case.
var ErrRateLimitExceeded = errors.Newf("free search limit reached").
	Component("search").
	Category(errors.CategoryLimit).
	Build()

// Marker color tags consumed by the external map renderer.
const (
	markerDanger = "red"
	markerRare   = "yellow"
	markerCommon = "green"
)

// Query is one search request. Zero Radius and empty Unit fall back to the
// configured defaults.
type Query struct {
	LocationText string  `json:"location_text"`
	Radius       float64 `json:"radius"`
	Unit         string  `json:"unit"`
}

// AuthState identifies the caller for rate limiting. CallerID must be
// stable per caller (user ID, session token or client IP).
type AuthState struct {
	IsAuthenticated bool
	CallerID        string
}

// SourceCount reports how many records one source contributed.
type SourceCount struct {
	Source sources.Source `json:"source"`
	Count  int            `json:"count"`
}

// Result is the terminal output of one search.
type Result struct {
	RequestID    string                `json:"request_id"`
	Center       geo.Coordinate        `json:"center"`
	RadiusKm     float64               `json:"radius_km"`
	Sightings    []sighting.Classified `json:"sightings"`
	MapView      geo.MapView           `json:"map_view"`
	SourceCounts []SourceCount         `json:"source_counts"`
	NoMatch      bool                  `json:"no_match,omitempty"`
}

// Service runs searches. It is safe for concurrent use.
type Service struct {
	settings  *conf.Settings
	geocoder  geocoder.Provider
	providers []sources.Provider
	enricher  *enrich.Enricher
	limiter   *Limiter
	metrics   *observability.Metrics
}

// New assembles a search service. providers are queried in slice order,
// which also fixes the tie-break order of equal-distance results. metrics
// may be nil.
func New(settings *conf.Settings, gc geocoder.Provider, providers []sources.Provider, enricher *enrich.Enricher, metrics *observability.Metrics) *Service {
	return &Service{
		settings:  settings,
		geocoder:  gc,
		providers: providers,
		enricher:  enricher,
		limiter:   NewLimiter(settings.Search.FreeSearchLimit),
		metrics:   metrics,
	}
}

// Limiter exposes the rate limiter, mainly so callers can reset a caller's
// quota after authentication.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// Close releases the service log file.
func (s *Service) Close() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			logging.ForService("search").Warn("Failed to close search log file", "error", err)
		}
	}
}

// Search executes the full pipeline for one query.
//
// The rate check runs first: an out-of-quota unauthenticated caller gets
// ErrRateLimitExceeded before any network call, and every attempt consumes quota
// regardless of outcome. A geocoder "no match" is a valid empty result, not
// an error; a geocoder transport failure aborts the search.
func (s *Service) Search(ctx context.Context, q Query, auth AuthState) (*Result, error) {
	start := time.Now()
	requestID := uuid.New().String()

	if !auth.IsAuthenticated {
		if !s.limiter.Allow(auth.CallerID) {
			logger.Info("search rejected by free-tier limit",
				"request_id", requestID, "caller_id", auth.CallerID)
			if s.metrics != nil {
				s.metrics.Search.RecordRateLimitRejection()
				s.metrics.Search.RecordSearch("rate_limited")
			}
			return nil, ErrRateLimitExceeded
		}
	}

	q = s.applyDefaults(q)
	if err := validateQuery(&q); err != nil {
		if s.metrics != nil {
			s.metrics.Search.RecordSearch("invalid")
		}
		return nil, err
	}

	center, noMatch, err := s.resolveCenter(ctx, q.LocationText)
	if err != nil {
		if s.metrics != nil {
			s.metrics.Search.RecordSearch("geocoding_failed")
		}
		return nil, err
	}
	if noMatch {
		logger.Info("no geocoding match, returning empty result",
			"request_id", requestID, "location", q.LocationText)
		if s.metrics != nil {
			s.metrics.Search.RecordSearch("no_match")
			s.metrics.Search.RecordResultSize(0)
		}
		return &Result{
			RequestID: requestID,
			Sightings: []sighting.Classified{},
			NoMatch:   true,
		}, nil
	}

	radiusKm := q.Radius
	if q.Unit == conf.UnitMiles {
		radiusKm = geo.MilesToKm(q.Radius)
	}

	records, counts := s.fetchAll(ctx, center, radiusKm)
	classified := s.process(records, center)

	if max := s.settings.Search.MaxResults; max > 0 && len(classified) > max {
		classified = classified[:max]
	}

	result := &Result{
		RequestID:    requestID,
		Center:       center,
		RadiusKm:     radiusKm,
		Sightings:    classified,
		MapView:      buildMapView(center, classified),
		SourceCounts: counts,
	}

	logger.Info("search completed",
		"request_id", requestID,
		"location", q.LocationText,
		"radius_km", radiusKm,
		"results", len(classified),
		"duration_ms", time.Since(start).Milliseconds())
	if s.metrics != nil {
		s.metrics.Search.RecordSearch("success")
		s.metrics.Search.RecordSearchDuration(time.Since(start).Seconds())
		s.metrics.Search.RecordResultSize(len(classified))
	}
	return result, nil
}

func (s *Service) applyDefaults(q Query) Query {
	if q.Radius == 0 {
		q.Radius = s.settings.Search.DefaultRadius
	}
	if q.Unit == "" {
		q.Unit = s.settings.Search.DefaultUnit
	}
	q.Unit = strings.ToLower(q.Unit)
	return q
}

func validateQuery(q *Query) error {
	if strings.TrimSpace(q.LocationText) == "" {
		return errors.Newf("location text is required").
			Component("search").
			Category(errors.CategoryValidation).
			Build()
	}
	if q.Radius <= 0 {
		return errors.Newf("search radius must be positive, got %g", q.Radius).
			Component("search").
			Category(errors.CategoryValidation).
			Build()
	}
	if q.Unit != conf.UnitKm && q.Unit != conf.UnitMiles {
		return errors.Newf("unknown radius unit %q", q.Unit).
			Component("search").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// resolveCenter turns the location text into a coordinate. Raw "lat,lon"
// input skips the geocoder entirely.
func (s *Service) resolveCenter(ctx context.Context, text string) (center geo.Coordinate, noMatch bool, err error) {
	if c, ok := geo.ParseCoordinateText(text); ok {
		if err := c.Validate(); err != nil {
			return geo.Coordinate{}, false, err
		}
		return c, false, nil
	}

	c, err := s.geocoder.Geocode(ctx, text)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoMatch) {
			return geo.Coordinate{}, true, nil
		}
		return geo.Coordinate{}, false, err
	}
	return c, false, nil
}

// fetchAll queries every provider concurrently. Each provider writes into
// its own slot so the concatenation order is fixed by provider order, which
// keeps equal-distance sorting deterministic. A failing provider logs a
// warning and contributes zero records.
func (s *Service) fetchAll(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]sources.Record, []SourceCount) {
	slots := make([][]sources.Record, len(s.providers))

	var g errgroup.Group
	for i, p := range s.providers {
		g.Go(func() error {
			fetchStart := time.Now()
			recs, err := p.FetchNearby(ctx, center, radiusKm)
			if s.metrics != nil {
				s.metrics.Source.RecordFetchDuration(string(p.Name()), time.Since(fetchStart).Seconds())
			}
			if err != nil {
				logger.Warn("source fetch failed, continuing without it",
					"source", p.Name(), "error", err)
				if s.metrics != nil {
					s.metrics.Source.RecordFetch(string(p.Name()), "error")
				}
				return nil
			}
			slots[i] = recs
			if s.metrics != nil {
				s.metrics.Source.RecordFetch(string(p.Name()), "success")
				s.metrics.Source.RecordRecordsFetched(string(p.Name()), len(recs))
			}
			return nil
		})
	}
	_ = g.Wait() // per-source errors are absorbed above

	var all []sources.Record
	counts := make([]SourceCount, 0, len(s.providers))
	for i, p := range s.providers {
		all = append(all, slots[i]...)
		counts = append(counts, SourceCount{Source: p.Name(), Count: len(slots[i])})
	}
	return all, counts
}

// process normalizes, enriches and classifies the raw records, dropping
// unnameable records and plants, then sorts by ascending distance from the
// query coordinate. The sort is stable so equal distances keep source
// arrival order.
func (s *Service) process(records []sources.Record, center geo.Coordinate) []sighting.Classified {
	classified := make([]sighting.Classified, 0, len(records))
	plantsDropped := 0

	for _, rec := range records {
		n, ok := sighting.Normalize(rec)
		if !ok {
			continue
		}
		if classify.IsPlant(&n) {
			plantsDropped++
			continue
		}
		description, facts := s.enricher.Enrich(&n)
		tags := classify.Classify(&n, description)

		classified = append(classified, sighting.Classified{
			Sighting:    n,
			Description: description,
			Facts:       facts,
			IsDangerous: tags.IsDangerous,
			Rarity:      tags.Rarity,
			DistanceKm:  geo.DistanceKm(center, n.Coordinate),
		})
	}

	if plantsDropped > 0 {
		logger.Debug("plant records dropped from results", "count", plantsDropped)
		if s.metrics != nil {
			s.metrics.Search.RecordPlantsFiltered(plantsDropped)
		}
	}

	sort.SliceStable(classified, func(i, j int) bool {
		return classified[i].DistanceKm < classified[j].DistanceKm
	})
	return classified
}

// buildMapView computes the renderer-facing bounding box and marker list.
// The box fits the result coordinates when there are any, otherwise it
// centers on the query coordinate.
func buildMapView(center geo.Coordinate, classified []sighting.Classified) geo.MapView {
	markers := make([]geo.Marker, 0, len(classified))
	coords := make([]geo.Coordinate, 0, len(classified))
	for i := range classified {
		c := classified[i].Coordinate
		coords = append(coords, c)
		markers = append(markers, geo.Marker{
			Lat:      c.Lat,
			Lon:      c.Lon,
			ColorTag: markerColor(&classified[i]),
		})
	}

	bbox, ok := geo.FitBox(coords)
	if !ok {
		bbox = geo.CenteredBox(center)
	}
	return geo.MapView{BBox: bbox, Markers: markers}
}

func markerColor(c *sighting.Classified) string {
	switch {
	case c.IsDangerous:
		return markerDanger
	case c.Rarity == sighting.RarityRare:
		return markerRare
	default:
		return markerCommon
	}
}
