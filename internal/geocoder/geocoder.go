// Package geocoder turns free-text locations into coordinates using a
// Nominatim-compatible search endpoint.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/httpclient"
	"github.com/wildscout/wildscout-go/internal/logging"
	"github.com/wildscout/wildscout-go/internal/observability/metrics"
)

// Package-level logger specific to the geocoder service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "geocoder.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "geocoder", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize geocoder file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("geocoder", serviceLevelVar)
		closeLogger = func() error { return nil }
	}
}

// ErrNoMatch is returned when the geocoder found no result for the query.
// "No match" is a valid outcome for the search pipeline, not a failure.
var ErrNoMatch = errors.Newf("no geocoding match").
	Component("geocoder").
	Category(errors.CategoryNotFound).
	Build()

// Provider resolves free text to a coordinate.
type Provider interface {
	Geocode(ctx context.Context, text string) (geo.Coordinate, error)
}

// Config holds configuration for the Nominatim client.
type Config struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	CacheTTL    time.Duration
	RateLimitMS int
}

// DefaultConfig returns a Config with sensible defaults. The one-request-per-
// second floor follows the Nominatim usage policy.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://nominatim.openstreetmap.org/search",
		UserAgent:   "WildScout https://github.com/wildscout/wildscout-go",
		Timeout:     10 * time.Second,
		CacheTTL:    time.Hour,
		RateLimitMS: 1100,
	}
}

// ConfigFromSettings maps application settings onto a client Config.
func ConfigFromSettings(s *conf.Settings) Config {
	cfg := DefaultConfig()
	if s == nil {
		return cfg
	}
	if s.Geocoder.BaseURL != "" {
		cfg.BaseURL = s.Geocoder.BaseURL
	}
	if s.Geocoder.UserAgent != "" {
		cfg.UserAgent = s.Geocoder.UserAgent
	}
	if s.Geocoder.TimeoutSec > 0 {
		cfg.Timeout = time.Duration(s.Geocoder.TimeoutSec) * time.Second
	}
	if s.Geocoder.CacheTTLMin > 0 {
		cfg.CacheTTL = time.Duration(s.Geocoder.CacheTTLMin) * time.Minute
	}
	if s.Geocoder.RateLimitMS > 0 {
		cfg.RateLimitMS = s.Geocoder.RateLimitMS
	}
	return cfg
}

// Nominatim is a Provider backed by a Nominatim-compatible HTTP endpoint.
// The first search result wins.
type Nominatim struct {
	config     Config
	httpClient *httpclient.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
	metrics    *metrics.GeocoderMetrics
}

// nominatimResult mirrors the relevant fields of a Nominatim search result.
// Latitude and longitude arrive as JSON strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatim creates a new Nominatim geocoding client.
func NewNominatim(config Config, hc *httpclient.Client) *Nominatim {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = def.CacheTTL
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = def.RateLimitMS
	}
	if hc == nil {
		hc = httpclient.New(&httpclient.Config{
			DefaultTimeout: config.Timeout,
			UserAgent:      config.UserAgent,
		})
	}

	interval := time.Duration(config.RateLimitMS) * time.Millisecond

	logger.Info("Geocoder client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"rate_limit_ms", config.RateLimitMS)

	return &Nominatim{
		config:     config,
		httpClient: hc,
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

// SetMetrics attaches Prometheus metrics to the client. Safe to skip; all
// recording is nil-checked.
func (n *Nominatim) SetMetrics(m *metrics.GeocoderMetrics) {
	n.metrics = m
}

func (n *Nominatim) recordRequest(status string, start time.Time) {
	if n.metrics == nil {
		return
	}
	n.metrics.RecordRequest(status)
	n.metrics.RecordRequestDuration(time.Since(start).Seconds())
}

func (n *Nominatim) recordCache(result string) {
	if n.metrics == nil {
		return
	}
	n.metrics.RecordCacheOperation(result)
}

// Close cleans up client resources.
func (n *Nominatim) Close() {
	logger.Info("Closing geocoder client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing geocoder logger: %v", err)
		}
	}
}

// Geocode resolves free text to the coordinate of the first search result.
// Returns ErrNoMatch when the endpoint finds nothing.
func (n *Nominatim) Geocode(ctx context.Context, text string) (geo.Coordinate, error) {
	cacheKey := "geocode:" + text

	if cached, found := n.cache.Get(cacheKey); found {
		switch v := cached.(type) {
		case geo.Coordinate:
			logger.Debug("Geocoder cache hit", "query", text, "coordinate", v.String())
			n.recordCache("hit")
			return v, nil
		case error:
			// Negative cache: remembered no-match
			n.recordCache("hit")
			return geo.Coordinate{}, v
		}
	}
	n.recordCache("miss")

	if err := n.limiter.Wait(ctx); err != nil {
		return geo.Coordinate{}, errors.New(err).
			Component("geocoder").
			Category(errors.CategoryGeocoding).
			Context("operation", "rate_limit_wait").
			Build()
	}

	reqCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("q", text)
	requestURL := fmt.Sprintf("%s?%s", n.config.BaseURL, query.Encode())

	logger.Debug("Geocoding request", "url", requestURL)

	start := time.Now()
	resp, err := n.httpClient.Get(reqCtx, requestURL)
	if err != nil {
		n.recordRequest("error", start)
		logger.Error("Geocoding request failed", "error", err, "query", text)
		return geo.Coordinate{}, errors.Newf("geocoding request failed: %w", err).
			Component("geocoder").
			Category(errors.CategoryGeocoding).
			Context("query", text).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug("Failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		n.recordRequest("error", start)
		return geo.Coordinate{}, errors.Newf("failed to read geocoding response: %w", err).
			Component("geocoder").
			Category(errors.CategoryGeocoding).
			Context("query", text).
			Context("status_code", resp.StatusCode).
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		n.recordRequest("error", start)
		logger.Warn("Geocoder returned non-OK status",
			"status_code", resp.StatusCode,
			"query", text)
		return geo.Coordinate{}, errors.Newf("geocoder returned status %d", resp.StatusCode).
			Component("geocoder").
			Category(errors.CategoryGeocoding).
			Context("query", text).
			Context("status_code", resp.StatusCode).
			Build()
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		n.recordRequest("error", start)
		return geo.Coordinate{}, errors.Newf("failed to parse geocoding response: %w", err).
			Component("geocoder").
			Category(errors.CategoryFileParsing).
			Context("query", text).
			Context("response_size", len(body)).
			Build()
	}

	if len(results) == 0 {
		logger.Info("Geocoder found no match", "query", text)
		n.recordRequest("no_match", start)
		n.cache.Set(cacheKey, error(ErrNoMatch), cache.DefaultExpiration)
		return geo.Coordinate{}, ErrNoMatch
	}

	coord, err := parseResultCoordinate(&results[0])
	if err != nil {
		n.recordRequest("error", start)
		return geo.Coordinate{}, errors.New(err).
			Component("geocoder").
			Category(errors.CategoryFileParsing).
			Context("query", text).
			Build()
	}

	n.recordRequest("success", start)
	logger.Info("Geocoded location",
		"query", text,
		"coordinate", coord.String(),
		"display_name", results[0].DisplayName)

	n.cache.Set(cacheKey, coord, cache.DefaultExpiration)
	return coord, nil
}

// parseResultCoordinate converts the string lat/lon of a Nominatim result.
func parseResultCoordinate(r *nominatimResult) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}
	c := geo.Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}
