package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	t.Parallel()

	base := stderrors.New("connection refused")
	err := New(base).
		Component("geocoder").
		Category(CategoryNetwork).
		Context("host", "nominatim.example.org").
		Build()

	assert.Equal(t, "connection refused", err.Error())
	assert.Equal(t, "geocoder", err.GetComponent())
	assert.Equal(t, string(CategoryNetwork), err.GetCategory())
	assert.Equal(t, "nominatim.example.org", err.GetContext()["host"])
	assert.False(t, err.GetTimestamp().IsZero())
	assert.True(t, Is(err, base))
}

func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf("bad radius %g", -1.0).Build()
	assert.Equal(t, "bad radius -1", err.Error())
	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
}

func TestIsMatchesByCategory(t *testing.T) {
	t.Parallel()

	a := Newf("first").Category(CategoryNotFound).Build()
	b := Newf("second").Category(CategoryNotFound).Build()
	c := Newf("third").Category(CategoryNetwork).Build()

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}

func TestIsSeesThroughWrapping(t *testing.T) {
	t.Parallel()

	sentinel := Newf("no match").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("geocode: %w", Newf("nothing here").Category(CategoryNotFound).Build())

	assert.True(t, Is(wrapped, sentinel))
}

func TestHasCategory(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Category(CategoryDatabase).Build()
	assert.True(t, HasCategory(err, CategoryDatabase))
	assert.False(t, HasCategory(err, CategoryNetwork))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, HasCategory(wrapped, CategoryDatabase))

	assert.False(t, HasCategory(stderrors.New("plain"), CategoryDatabase))
	assert.False(t, HasCategory(nil, CategoryDatabase))
}

func TestPriorityValidation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PriorityHigh, Newf("x").Priority(PriorityHigh).Build().GetPriority())
	// Unknown values fall back to medium rather than propagating garbage.
	assert.Equal(t, PriorityMedium, Newf("x").Priority("urgent-ish").Build().GetPriority())
	assert.Empty(t, Newf("x").Build().GetPriority())
}

func TestContextCopyIsIsolated(t *testing.T) {
	t.Parallel()

	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	require.NotNil(t, ctx)
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"])
}
