// Package sighting defines the normalized sighting model and converts the
// heterogeneous source records into it.
package sighting

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wildscout/wildscout-go/internal/geo"
	"github.com/wildscout/wildscout-go/internal/sources"
)

// Rarity is the display-only rarity tag derived by the classifier.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
)

// Sighting is the common shape all source records normalize into.
// CommonName is never empty; records with no derivable name are dropped
// during normalization.
type Sighting struct {
	CommonName     string         `json:"common_name"`
	ScientificName string         `json:"scientific_name"`
	Coordinate     geo.Coordinate `json:"coordinate"`
	ImageURL       string         `json:"image_url,omitempty"`
	RawDescription string         `json:"-"`
	TaxonClass     string         `json:"taxon_class,omitempty"`
	TaxonOrder     string         `json:"taxon_order,omitempty"`
	TaxonFamily    string         `json:"taxon_family,omitempty"`
	TaxonGenus     string         `json:"taxon_genus,omitempty"`
	Source         sources.Source `json:"source"`
}

// Classified is the terminal artifact returned to callers: a normalized
// sighting plus derived description, facts and classification tags. Plant
// records are filtered out before this artifact is built, so it carries no
// plant flag.
type Classified struct {
	Sighting
	Description string   `json:"description"`
	Facts       []string `json:"facts"`
	IsDangerous bool     `json:"is_dangerous"`
	Rarity      Rarity   `json:"rarity"`
	DistanceKm  float64  `json:"distance_km"`
}

// unknownName marks a record whose name could not be derived.
const unknownName = "Unknown"

// Normalize maps a raw source record into a Sighting. Returns false when the
// record has no derivable common name and must be dropped. The switch over
// the origin tag is exhaustive; a new source does not normalize until a case
// is added here.
func Normalize(rec sources.Record) (Sighting, bool) {
	var s Sighting

	switch rec.Origin {
	case sources.SourceINaturalist:
		r := rec.INaturalist
		if r == nil {
			return Sighting{}, false
		}
		s = Sighting{
			CommonName:     firstNonEmpty(r.CommonName, r.TaxonName, unknownName),
			ScientificName: r.TaxonName,
			Coordinate:     r.Coordinate,
			ImageURL:       r.PhotoURL,
			RawDescription: r.WikipediaSummary,
			Source:         sources.SourceINaturalist,
		}

	case sources.SourceEBird:
		r := rec.EBird
		if r == nil {
			return Sighting{}, false
		}
		s = Sighting{
			CommonName:     firstNonEmpty(r.CommonName, unknownName),
			ScientificName: r.ScientificName,
			Coordinate:     r.Coordinate,
			Source:         sources.SourceEBird,
		}

	case sources.SourceGBIF:
		r := rec.GBIF
		if r == nil {
			return Sighting{}, false
		}
		s = Sighting{
			CommonName:     firstNonEmpty(r.Species, r.ScientificName, unknownName),
			ScientificName: r.ScientificName,
			Coordinate:     r.Coordinate,
			RawDescription: joinTaxa(r.TaxonClass, r.TaxonOrder, r.TaxonFamily, r.TaxonGenus),
			TaxonClass:     r.TaxonClass,
			TaxonOrder:     r.TaxonOrder,
			TaxonFamily:    r.TaxonFamily,
			TaxonGenus:     r.TaxonGenus,
			Source:         sources.SourceGBIF,
		}

	default:
		return Sighting{}, false
	}

	if s.CommonName == unknownName {
		return Sighting{}, false
	}

	// Consistent casing for display and content lookup keys
	s.CommonName = TitleCase(s.CommonName)

	return s, true
}

// firstNonEmpty returns the first non-empty candidate.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// joinTaxa joins the non-empty taxonomy levels with ", ".
func joinTaxa(taxa ...string) string {
	parts := make([]string, 0, len(taxa))
	for _, t := range taxa {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

// TitleCase capitalizes the first letter of each word and lowercases the
// rest, for consistent display names and lookup keys.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
