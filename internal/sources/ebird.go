package sources

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/httpclient"
)

// DefaultEBirdBaseURL is the public eBird API v2 endpoint.
const DefaultEBirdBaseURL = "https://api.ebird.org/v2"

// eBird caps the nearby observation search distance at 50 km.
const ebirdMaxDistanceKm = 50

// EBirdClient fetches recent nearby observations from the eBird API.
// Requires an API key, sent as the X-eBirdApiToken header.
type EBirdClient struct {
	config     Config
	httpClient *httpclient.Client
	cache      *cache.Cache
}

// ebirdObservation mirrors the fields used from one recent observation.
type ebirdObservation struct {
	SciName string  `json:"sciName"`
	ComName string  `json:"comName"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// NewEBird creates a new eBird API client.
func NewEBird(config Config, hc *httpclient.Client) (*EBirdClient, error) {
	if config.APIKey == "" {
		return nil, errors.Newf("eBird API key is required").
			Category(errors.CategoryConfiguration).
			Component("sources").
			Build()
	}
	config.applyDefaults(DefaultEBirdBaseURL)
	if hc == nil {
		hc = httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout})
	}
	return &EBirdClient{
		config:     config,
		httpClient: hc,
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
	}, nil
}

// Name implements Provider.
func (c *EBirdClient) Name() Source {
	return SourceEBird
}

// FetchNearby returns recent observations around center within radiusKm,
// clamped to eBird's 50 km maximum search distance.
func (c *EBirdClient) FetchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Record, error) {
	key := cacheKey(SourceEBird, center.Lat, center.Lon, radiusKm)
	if cached, found := c.cache.Get(key); found {
		if records, ok := cached.([]Record); ok {
			logger.Debug("eBird cache hit", "cache_key", key, "records", len(records))
			return records, nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	dist := math.Min(radiusKm, ebirdMaxDistanceKm)
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(center.Lat, 'f', 2, 64))
	query.Set("lng", strconv.FormatFloat(center.Lon, 'f', 2, 64))
	query.Set("dist", strconv.FormatFloat(dist, 'f', 1, 64))
	query.Set("maxResults", strconv.Itoa(c.config.MaxRecords))
	requestURL := fmt.Sprintf("%s/data/obs/geo/recent?%s", c.config.BaseURL, query.Encode())

	headers := map[string]string{"X-eBirdApiToken": c.config.APIKey}

	start := time.Now()
	var observations []ebirdObservation
	if err := fetchJSON(reqCtx, c.httpClient, SourceEBird, requestURL, headers, &observations); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(observations))
	for i := range observations {
		obs := &observations[i]
		coord := geo.Coordinate{Lat: obs.Lat, Lon: obs.Lng}
		if coord.Validate() != nil {
			continue
		}
		records = append(records, Record{
			Origin: SourceEBird,
			EBird: &EBirdRecord{
				Coordinate:     coord,
				ScientificName: obs.SciName,
				CommonName:     obs.ComName,
			},
		})
	}

	logger.Info("eBird fetch complete",
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds())

	c.cache.Set(key, records, cache.DefaultExpiration)
	return records, nil
}
