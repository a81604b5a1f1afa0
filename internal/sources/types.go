// Package sources provides clients for the public wildlife observation APIs
// queried by the search pipeline: iNaturalist, eBird and GBIF. Each client
// normalizes nothing; it returns tagged raw records and leaves shaping to the
// sighting package.
package sources

import (
	"context"
	"time"

	"github.com/wildscout/wildscout-go/internal/geo"
)

// Source identifies which API produced a record. The tag decides how a
// record is normalized and which description fallbacks apply.
type Source string

const (
	SourceINaturalist Source = "inaturalist"
	SourceEBird       Source = "ebird"
	SourceGBIF        Source = "gbif"
)

// Record is a tagged variant over the three source-specific shapes. Exactly
// one payload pointer is non-nil and matches Origin. Consumers switch on
// Origin exhaustively so adding a fourth source is a compile-visible change.
type Record struct {
	Origin      Source
	INaturalist *INatRecord
	EBird       *EBirdRecord
	GBIF        *GBIFRecord
}

// INatRecord carries the fields used from an iNaturalist observation.
type INatRecord struct {
	Coordinate       geo.Coordinate
	TaxonName        string // scientific name of the observed taxon
	CommonName       string // preferred common name, may be empty
	WikipediaSummary string // plain-text summary, may be empty
	PhotoURL         string // observation photo, may be empty
}

// EBirdRecord carries the fields used from an eBird recent observation.
type EBirdRecord struct {
	Coordinate     geo.Coordinate
	ScientificName string
	CommonName     string
}

// GBIFRecord carries the fields used from a GBIF occurrence.
type GBIFRecord struct {
	Coordinate     geo.Coordinate
	Species        string
	ScientificName string
	TaxonClass     string
	TaxonOrder     string
	TaxonFamily    string
	TaxonGenus     string
}

// Provider is a single sighting data source. A failing provider must only
// affect its own records; the pipeline absorbs its errors.
type Provider interface {
	Name() Source
	FetchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]Record, error)
}

// Config holds the settings shared by all source clients.
type Config struct {
	BaseURL    string
	APIKey     string // only used by sources that require one
	Timeout    time.Duration
	CacheTTL   time.Duration
	MaxRecords int
}

// Defaults applied when a Config field is zero.
const (
	defaultTimeout    = 15 * time.Second
	defaultCacheTTL   = 10 * time.Minute
	defaultMaxRecords = 50
)

func (c *Config) applyDefaults(defaultBaseURL string) {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.MaxRecords == 0 {
		c.MaxRecords = defaultMaxRecords
	}
}
