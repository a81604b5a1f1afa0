package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/k3a/html2text"
	"github.com/patrickmn/go-cache"

	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/httpclient"
)

// DefaultINaturalistBaseURL is the public iNaturalist API endpoint.
const DefaultINaturalistBaseURL = "https://api.inaturalist.org/v1"

// INaturalistClient fetches observations from the iNaturalist API.
type INaturalistClient struct {
	config     Config
	httpClient *httpclient.Client
	cache      *cache.Cache
}

// inatResponse mirrors the observation search response envelope.
type inatResponse struct {
	TotalResults int               `json:"total_results"`
	Results      []inatObservation `json:"results"`
}

// inatObservation mirrors the fields used from one observation. GeoJSON
// coordinates arrive as [lon, lat].
type inatObservation struct {
	Geojson struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geojson"`
	Taxon struct {
		Name                string `json:"name"`
		PreferredCommonName string `json:"preferred_common_name"`
		WikipediaSummary    string `json:"wikipedia_summary"`
		DefaultPhoto        struct {
			MediumURL string `json:"medium_url"`
		} `json:"default_photo"`
	} `json:"taxon"`
}

// NewINaturalist creates a new iNaturalist API client.
func NewINaturalist(config Config, hc *httpclient.Client) *INaturalistClient {
	config.applyDefaults(DefaultINaturalistBaseURL)
	if hc == nil {
		hc = httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout})
	}
	return &INaturalistClient{
		config:     config,
		httpClient: hc,
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
	}
}

// Name implements Provider.
func (c *INaturalistClient) Name() Source {
	return SourceINaturalist
}

// FetchNearby returns verifiable observations around center within radiusKm.
func (c *INaturalistClient) FetchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Record, error) {
	key := cacheKey(SourceINaturalist, center.Lat, center.Lon, radiusKm)
	if cached, found := c.cache.Get(key); found {
		if records, ok := cached.([]Record); ok {
			logger.Debug("iNaturalist cache hit", "cache_key", key, "records", len(records))
			return records, nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(center.Lat, 'f', 5, 64))
	query.Set("lng", strconv.FormatFloat(center.Lon, 'f', 5, 64))
	query.Set("radius", strconv.FormatFloat(radiusKm, 'f', 2, 64))
	query.Set("per_page", strconv.Itoa(c.config.MaxRecords))
	query.Set("order_by", "observed_on")
	query.Set("verifiable", "true")
	requestURL := fmt.Sprintf("%s/observations?%s", c.config.BaseURL, query.Encode())

	start := time.Now()
	var response inatResponse
	if err := fetchJSON(reqCtx, c.httpClient, SourceINaturalist, requestURL, nil, &response); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(response.Results))
	for i := range response.Results {
		obs := &response.Results[i]
		coord, ok := inatCoordinate(obs)
		if !ok {
			continue
		}
		records = append(records, Record{
			Origin: SourceINaturalist,
			INaturalist: &INatRecord{
				Coordinate:       coord,
				TaxonName:        obs.Taxon.Name,
				CommonName:       obs.Taxon.PreferredCommonName,
				WikipediaSummary: stripHTML(obs.Taxon.WikipediaSummary),
				PhotoURL:         obs.Taxon.DefaultPhoto.MediumURL,
			},
		})
	}

	logger.Info("iNaturalist fetch complete",
		"records", len(records),
		"total_results", response.TotalResults,
		"duration_ms", time.Since(start).Milliseconds())

	c.cache.Set(key, records, cache.DefaultExpiration)
	return records, nil
}

// inatCoordinate extracts the [lon, lat] GeoJSON pair of an observation.
// Observations with obscured or missing geometry are skipped.
func inatCoordinate(obs *inatObservation) (geo.Coordinate, bool) {
	if len(obs.Geojson.Coordinates) < 2 {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{
		Lat: obs.Geojson.Coordinates[1],
		Lon: obs.Geojson.Coordinates[0],
	}
	if c.Validate() != nil {
		return geo.Coordinate{}, false
	}
	return c, true
}

// stripHTML converts the wikipedia_summary HTML fragment to plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	return html2text.HTML2Text(s)
}
