// Package enrich fills in descriptions and facts for sightings whose source
// records carry little or no usable text. Content comes from a provider
// chain: the record's own description when it is substantial enough, then a
// curated species table, then a generic template keyed to the animal group.
package enrich

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/sighting"
	"github.com/wildscout/wildscout-go/internal/sources"
)

//go:embed species_content.yaml
var speciesContentYAML []byte

// A raw source description must be at least this long and contain at least
// minSentences sentence terminators to be used as-is.
const (
	minDescriptionLen = 100
	minSentences      = 3
)

// Entry is one unit of curated content for a species.
type Entry struct {
	Description string
	Facts       []string
}

// ContentProvider supplies curated content by common name. Implementations
// return ok=false when they have nothing for the species; the enricher then
// falls through to generic content.
type ContentProvider interface {
	Lookup(commonName string) (Entry, bool)
}

type staticEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Facts       []string `yaml:"facts"`
}

type staticContent struct {
	Species []staticEntry `yaml:"species"`
}

// StaticProvider serves the embedded species table. Matching is
// case-insensitive: exact name first, then substring containment in either
// direction, so "Robin" finds "American Robin" and vice versa.
type StaticProvider struct {
	entries []staticEntry
}

// NewStaticProvider parses the embedded species table.
func NewStaticProvider() (*StaticProvider, error) {
	var content staticContent
	if err := yaml.Unmarshal(speciesContentYAML, &content); err != nil {
		return nil, errors.New(err).
			Component("enrich").
			Category(errors.CategoryFileParsing).
			Context("operation", "parse_species_content").
			Build()
	}
	return &StaticProvider{entries: content.Species}, nil
}

// Lookup returns the curated entry for a common name, if any.
func (p *StaticProvider) Lookup(commonName string) (Entry, bool) {
	name := strings.ToLower(strings.TrimSpace(commonName))
	if name == "" {
		return Entry{}, false
	}

	for _, e := range p.entries {
		if strings.ToLower(e.Name) == name {
			return Entry{Description: e.Description, Facts: e.Facts}, true
		}
	}
	// Substring pass in table order keeps results deterministic.
	for _, e := range p.entries {
		key := strings.ToLower(e.Name)
		if strings.Contains(key, name) || strings.Contains(name, key) {
			return Entry{Description: e.Description, Facts: e.Facts}, true
		}
	}
	return Entry{}, false
}

// Enricher produces the final description and facts for a sighting.
type Enricher struct {
	provider ContentProvider
}

// New returns an enricher backed by the given provider. A nil provider
// falls back to the embedded species table.
func New(provider ContentProvider) (*Enricher, error) {
	if provider == nil {
		p, err := NewStaticProvider()
		if err != nil {
			return nil, err
		}
		provider = p
	}
	return &Enricher{provider: provider}, nil
}

// Enrich returns a description and facts for the sighting. The returned
// description always has at least three sentences and mentions the species;
// the facts slice is never empty.
func (e *Enricher) Enrich(s *sighting.Sighting) (description string, facts []string) {
	entry, found := e.provider.Lookup(s.CommonName)

	if usableDescription(s.RawDescription) {
		description = strings.TrimSpace(s.RawDescription)
	} else if found && entry.Description != "" {
		description = entry.Description
	} else {
		description = groupDescription(s)
	}

	if found && len(entry.Facts) > 0 {
		facts = entry.Facts
	} else {
		facts = genericFacts(s.CommonName)
	}
	return description, facts
}

// usableDescription reports whether a raw source description is substantial
// enough to serve without replacement.
func usableDescription(raw string) bool {
	raw = strings.TrimSpace(raw)
	return len(raw) >= minDescriptionLen && strings.Count(raw, ".") >= minSentences
}

// animalGroup buckets a sighting into a broad group for the generic
// description templates.
func animalGroup(s *sighting.Sighting) string {
	if s.Source == sources.SourceEBird {
		return "bird"
	}
	class := strings.ToLower(s.TaxonClass)
	switch {
	case strings.Contains(class, "aves") || strings.Contains(class, "bird"):
		return "bird"
	case strings.Contains(class, "mammalia") || strings.Contains(class, "mammal"):
		return "mammal"
	case strings.Contains(class, "actinopterygii") || strings.Contains(class, "chondrichthyes") || strings.Contains(class, "fish"):
		return "fish"
	case strings.Contains(class, "reptilia") || strings.Contains(class, "reptile"):
		return "reptile"
	case strings.Contains(class, "amphibia"):
		return "amphibian"
	case strings.Contains(class, "insecta") || strings.Contains(class, "arachnida"):
		return "insect"
	}
	return ""
}

func groupDescription(s *sighting.Sighting) string {
	name := s.CommonName
	switch animalGroup(s) {
	case "bird":
		return fmt.Sprintf("The %s is a bird species observed in this area. "+
			"Birds are warm-blooded vertebrates characterized by feathers and, in most species, flight. "+
			"Look for it near trees, shrubs or open ground depending on its feeding habits.", name)
	case "mammal":
		return fmt.Sprintf("The %s is a mammal living in this region. "+
			"Mammals are warm-blooded animals that nurse their young and typically have fur. "+
			"Many mammals are most active around dawn and dusk, so those are the best hours to spot one.", name)
	case "fish":
		return fmt.Sprintf("The %s is a fish found in waters near this location. "+
			"Fish are cold-blooded aquatic vertebrates that breathe through gills. "+
			"Sightings are usually reported from shorelines, docks and bridges.", name)
	case "reptile":
		return fmt.Sprintf("The %s is a reptile recorded in this area. "+
			"Reptiles are cold-blooded animals with scaly skin that rely on external warmth. "+
			"Warm, sunny spots such as rocks and trail edges are the most likely places to see one.", name)
	case "amphibian":
		return fmt.Sprintf("The %s is an amphibian found near this location. "+
			"Amphibians live part of their lives in water and part on land, and most need moist habitats. "+
			"Ponds, streams and damp woodland are the best places to look.", name)
	case "insect":
		return fmt.Sprintf("The %s is an insect or other arthropod recorded in this area. "+
			"Arthropods are the most diverse group of animals on Earth. "+
			"Flowers, foliage and lights after dark are all good places to find them.", name)
	}
	if s.ScientificName != "" {
		return fmt.Sprintf("The %s (%s) is a species recently observed in this area. "+
			"It was reported by local wildlife observers through community science platforms. "+
			"Details about its appearance and behavior can be found in regional field guides.", name, s.ScientificName)
	}
	return fmt.Sprintf("The %s is a species recently observed in this area. "+
		"It was reported by local wildlife observers through community science platforms. "+
		"Details about its appearance and behavior can be found in regional field guides.", name)
}

func genericFacts(commonName string) []string {
	return []string{
		fmt.Sprintf("The %s has been reported by observers near this location.", commonName),
		"Community science platforms collect millions of wildlife observations each year.",
		"Observation records include the location and date each individual was seen.",
		fmt.Sprintf("Local field guides can help you identify the %s in the wild.", commonName),
	}
}
