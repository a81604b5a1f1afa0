// Package classify derives display tags (plant, dangerous, rarity) from
// keyword matching. The matching is literal substring matching by design:
// a harmless "Garter Snake" is flagged dangerous because of "snake", and any
// description mentioning "predator" flags its species. These false positives
// are a documented property of the heuristic, not defects.
package classify

import (
	"strings"

	"github.com/wildscout/wildscout-go/internal/sighting"
)

// plantKeywords match against the common name and taxonomy fields. Mostly
// taxonomic group names, plus a few everyday plant words that show up in
// common names.
var plantKeywords = []string{
	"plant",
	"plantae",
	"tracheophyta",
	"magnoliophyta",
	"magnoliopsida",
	"liliopsida",
	"pinopsida",
	"polypodiopsida",
	"bryophyta",
	"fungi",
	"agaricomycetes",
	"poaceae",
	"orchidaceae",
	"asteraceae",
	"fabaceae",
	"rosaceae",
	"pinaceae",
	"fagaceae",
	"tree",
	"fern",
	"moss",
	"grass",
	"lichen",
	"orchid",
	"flower",
	"mushroom",
	"fungus",
}

// dangerKeywords match against the common name, scientific name and the
// final enriched description.
var dangerKeywords = []string{
	"venom",
	"poison",
	"bite",
	"sting",
	"toxic",
	"deadly",
	"dangerous",
	"predator",
	"aggressive",
	"shark",
	"bear",
	"wolf",
	"crocodile",
	"alligator",
	"snake",
	"scorpion",
	"spider",
	"cougar",
	"jellyfish",
	"wasp",
	"hornet",
	"boar",
	"rabies",
}

// rarityKeywords promote a sighting from common to rare.
var rarityKeywords = []string{
	"rare",
	"endangered",
	"threatened",
}

// Result carries the tags derived for one sighting.
type Result struct {
	IsPlant     bool
	IsDangerous bool
	Rarity      sighting.Rarity
}

// Classify derives the plant, danger and rarity tags for a sighting.
// description is the final enriched description, which participates in the
// danger and rarity matching.
func Classify(s *sighting.Sighting, description string) Result {
	return Result{
		IsPlant:     IsPlant(s),
		IsDangerous: isDangerous(s, description),
		Rarity:      rarity(s, description),
	}
}

// IsPlant reports whether the sighting looks like a plant or fungus. Plants
// are excluded from search results entirely, so this is exposed separately
// for callers that filter before enrichment.
func IsPlant(s *sighting.Sighting) bool {
	fields := []string{s.CommonName, s.TaxonClass, s.TaxonOrder, s.TaxonFamily, s.TaxonGenus}
	return matchAny(fields, plantKeywords)
}

func isDangerous(s *sighting.Sighting, description string) bool {
	fields := []string{s.CommonName, s.ScientificName, description}
	return matchAny(fields, dangerKeywords)
}

func rarity(s *sighting.Sighting, description string) sighting.Rarity {
	fields := []string{s.CommonName, description}
	if matchAny(fields, rarityKeywords) {
		return sighting.RarityRare
	}
	return sighting.RarityCommon
}

// matchAny reports whether any keyword occurs as a case-insensitive
// substring of any field.
func matchAny(fields, keywords []string) bool {
	for _, field := range fields {
		if field == "" {
			continue
		}
		lower := strings.ToLower(field)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
