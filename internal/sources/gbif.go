package sources

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/httpclient"
)

// DefaultGBIFBaseURL is the public GBIF API v1 endpoint.
const DefaultGBIFBaseURL = "https://api.gbif.org/v1"

// Rough degrees-per-kilometer at the equator, used to turn a radius into the
// lat/lon range parameters GBIF's occurrence search accepts.
const degPerKm = 1.0 / 111.0

// GBIFClient fetches occurrences from the GBIF occurrence search API.
type GBIFClient struct {
	config     Config
	httpClient *httpclient.Client
	cache      *cache.Cache
}

// gbifResponse mirrors the occurrence search response envelope.
type gbifResponse struct {
	Count   int              `json:"count"`
	Results []gbifOccurrence `json:"results"`
}

// gbifOccurrence mirrors the fields used from one occurrence.
type gbifOccurrence struct {
	Species          string  `json:"species"`
	ScientificName   string  `json:"scientificName"`
	Class            string  `json:"class"`
	Order            string  `json:"order"`
	Family           string  `json:"family"`
	Genus            string  `json:"genus"`
	DecimalLatitude  float64 `json:"decimalLatitude"`
	DecimalLongitude float64 `json:"decimalLongitude"`
}

// NewGBIF creates a new GBIF API client.
func NewGBIF(config Config, hc *httpclient.Client) *GBIFClient {
	config.applyDefaults(DefaultGBIFBaseURL)
	if hc == nil {
		hc = httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout})
	}
	return &GBIFClient{
		config:     config,
		httpClient: hc,
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
	}
}

// Name implements Provider.
func (c *GBIFClient) Name() Source {
	return SourceGBIF
}

// FetchNearby returns occurrences inside a lat/lon box covering radiusKm
// around center. GBIF takes range parameters rather than a radius; records
// in the box corners beyond the radius are trimmed by the pipeline's
// distance sort, not here.
func (c *GBIFClient) FetchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Record, error) {
	key := cacheKey(SourceGBIF, center.Lat, center.Lon, radiusKm)
	if cached, found := c.cache.Get(key); found {
		if records, ok := cached.([]Record); ok {
			logger.Debug("GBIF cache hit", "cache_key", key, "records", len(records))
			return records, nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	latDelta := radiusKm * degPerKm
	lonDelta := latDelta
	if cosLat := math.Cos(center.Lat * math.Pi / 180); cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	}

	query := url.Values{}
	query.Set("decimalLatitude", fmt.Sprintf("%.4f,%.4f",
		math.Max(center.Lat-latDelta, -90), math.Min(center.Lat+latDelta, 90)))
	query.Set("decimalLongitude", fmt.Sprintf("%.4f,%.4f",
		math.Max(center.Lon-lonDelta, -180), math.Min(center.Lon+lonDelta, 180)))
	query.Set("limit", strconv.Itoa(c.config.MaxRecords))
	query.Set("hasCoordinate", "true")
	requestURL := fmt.Sprintf("%s/occurrence/search?%s", c.config.BaseURL, query.Encode())

	start := time.Now()
	var response gbifResponse
	if err := fetchJSON(reqCtx, c.httpClient, SourceGBIF, requestURL, nil, &response); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(response.Results))
	for i := range response.Results {
		occ := &response.Results[i]
		coord := geo.Coordinate{Lat: occ.DecimalLatitude, Lon: occ.DecimalLongitude}
		if coord.Validate() != nil {
			continue
		}
		records = append(records, Record{
			Origin: SourceGBIF,
			GBIF: &GBIFRecord{
				Coordinate:     coord,
				Species:        occ.Species,
				ScientificName: occ.ScientificName,
				TaxonClass:     occ.Class,
				TaxonOrder:     occ.Order,
				TaxonFamily:    occ.Family,
				TaxonGenus:     occ.Genus,
			},
		})
	}

	logger.Info("GBIF fetch complete",
		"records", len(records),
		"count", response.Count,
		"duration_ms", time.Since(start).Milliseconds())

	c.cache.Set(key, records, cache.DefaultExpiration)
	return records, nil
}
