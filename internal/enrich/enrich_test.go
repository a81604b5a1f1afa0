package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildscout/wildscout-go/internal/sighting"
	"github.com/wildscout/wildscout-go/internal/sources"
)

func newTestEnricher(t *testing.T) *Enricher {
	t.Helper()
	e, err := New(nil)
	require.NoError(t, err)
	return e
}

func TestStaticProviderLookup(t *testing.T) {
	t.Parallel()

	p, err := NewStaticProvider()
	require.NoError(t, err)

	t.Run("exact match case-insensitive", func(t *testing.T) {
		t.Parallel()
		entry, ok := p.Lookup("american robin")
		require.True(t, ok)
		assert.Contains(t, entry.Description, "American Robin")
		assert.NotEmpty(t, entry.Facts)
	})

	t.Run("query contained in table name", func(t *testing.T) {
		t.Parallel()
		entry, ok := p.Lookup("Robin")
		require.True(t, ok)
		assert.Contains(t, entry.Description, "Robin")
	})

	t.Run("table name contained in query", func(t *testing.T) {
		t.Parallel()
		_, ok := p.Lookup("Eastern Garter Snake")
		assert.True(t, ok)
	})

	t.Run("unknown species", func(t *testing.T) {
		t.Parallel()
		_, ok := p.Lookup("Okapi")
		assert.False(t, ok)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, ok := p.Lookup("")
		assert.False(t, ok)
	})
}

func TestEnrichUsesRawDescription(t *testing.T) {
	t.Parallel()

	e := newTestEnricher(t)
	raw := "The red fox (Vulpes vulpes) is the largest of the true foxes. " +
		"It is distributed across the entire Northern Hemisphere. " +
		"Its range has expanded alongside human settlement."
	s := sighting.Sighting{
		CommonName:     "Red Fox",
		RawDescription: raw,
		Source:         sources.SourceINaturalist,
	}

	desc, facts := e.Enrich(&s)
	assert.Equal(t, raw, desc)
	// Curated facts still apply even when the raw description is kept.
	assert.NotEmpty(t, facts)
}

func TestEnrichFallsBackToSpeciesTable(t *testing.T) {
	t.Parallel()

	e := newTestEnricher(t)
	s := sighting.Sighting{
		CommonName:     "American Robin",
		RawDescription: "",
		Source:         sources.SourceEBird,
	}

	desc, facts := e.Enrich(&s)
	assert.Contains(t, desc, "American Robin")
	assert.GreaterOrEqual(t, strings.Count(desc, "."), 3)
	assert.NotEmpty(t, facts)
}

func TestEnrichShortDescriptionReplaced(t *testing.T) {
	t.Parallel()

	e := newTestEnricher(t)
	s := sighting.Sighting{
		CommonName:     "Mallard",
		RawDescription: "A duck.",
		Source:         sources.SourceGBIF,
	}

	desc, _ := e.Enrich(&s)
	assert.NotEqual(t, "A duck.", desc)
	assert.Contains(t, desc, "Mallard")
}

func TestEnrichGroupTemplates(t *testing.T) {
	t.Parallel()

	e := newTestEnricher(t)

	tests := []struct {
		name string
		s    sighting.Sighting
		want string
	}{
		{
			name: "ebird source implies bird",
			s:    sighting.Sighting{CommonName: "Azure Tit", Source: sources.SourceEBird},
			want: "bird species",
		},
		{
			name: "mammal by taxon class",
			s:    sighting.Sighting{CommonName: "Least Weasel", TaxonClass: "Mammalia", Source: sources.SourceGBIF},
			want: "mammal",
		},
		{
			name: "reptile by taxon class",
			s:    sighting.Sighting{CommonName: "Slow Worm", TaxonClass: "Reptilia", Source: sources.SourceGBIF},
			want: "reptile",
		},
		{
			name: "unknown group gets generic text",
			s:    sighting.Sighting{CommonName: "Garden Snail", Source: sources.SourceINaturalist},
			want: "recently observed in this area",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			desc, facts := e.Enrich(&tt.s)
			assert.Contains(t, desc, tt.s.CommonName)
			assert.Contains(t, desc, tt.want)
			assert.GreaterOrEqual(t, strings.Count(desc, "."), 3)
			assert.Len(t, facts, 4)
		})
	}
}

func TestEnrichGenericTemplateIncludesScientificName(t *testing.T) {
	t.Parallel()

	e := newTestEnricher(t)
	s := sighting.Sighting{
		CommonName:     "Okapi",
		ScientificName: "Okapia johnstoni",
		Source:         sources.SourceINaturalist,
	}

	desc, _ := e.Enrich(&s)
	assert.Contains(t, desc, "Okapi")
	assert.Contains(t, desc, "Okapia johnstoni")

	// Without a scientific name the template still reads cleanly.
	s.ScientificName = ""
	desc, _ = e.Enrich(&s)
	assert.Contains(t, desc, "Okapi")
	assert.NotContains(t, desc, "()")
}

func TestUsableDescription(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("This sentence pads the description out to length. ", 4)
	assert.True(t, usableDescription(long))
	assert.False(t, usableDescription("Too short. But punctuated. Thrice."))
	assert.False(t, usableDescription(strings.Repeat("no sentence terminators here ", 10)))
	assert.False(t, usableDescription(""))
}
