package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 51.505, Lon: -0.09},
		{Lat: -89.9, Lon: 179.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0.0, DistanceKm(p, p), 1e-9)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Coordinate{Lat: 51.505, Lon: -0.09}
	b := Coordinate{Lat: 52.52, Lon: 13.405}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
}

func TestDistanceKm_LondonBerlin(t *testing.T) {
	london := Coordinate{Lat: 51.505, Lon: -0.09}
	berlin := Coordinate{Lat: 52.52, Lon: 13.405}

	d := DistanceKm(london, berlin)
	// Known great-circle distance is ~934 km, accept 1% tolerance
	assert.InDelta(t, 934.0, d, 9.34)
}

func TestMilesToKm(t *testing.T) {
	assert.InDelta(t, 12.87, MilesToKm(8), 0.01)
	assert.InDelta(t, 1.60934, MilesToKm(1), 1e-9)
	assert.InDelta(t, 0, MilesToKm(0), 1e-9)
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"valid", Coordinate{Lat: 51.5, Lon: -0.1}, false},
		{"lat_north_pole", Coordinate{Lat: 90, Lon: 0}, false},
		{"lat_too_high", Coordinate{Lat: 90.1, Lon: 0}, true},
		{"lat_too_low", Coordinate{Lat: -91, Lon: 0}, true},
		{"lon_date_line", Coordinate{Lat: 0, Lon: -180}, false},
		{"lon_too_high", Coordinate{Lat: 0, Lon: 180.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseCoordinateText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Coordinate
		ok    bool
	}{
		{"plain", "51.5074, -0.1278", Coordinate{Lat: 51.5074, Lon: -0.1278}, true},
		{"no_space", "51.5074,-0.1278", Coordinate{Lat: 51.5074, Lon: -0.1278}, true},
		{"integers", "60, 24", Coordinate{Lat: 60, Lon: 24}, true},
		{"leading_whitespace", "  10.5 , 20.25  ", Coordinate{Lat: 10.5, Lon: 20.25}, true},
		{"address_text", "123 Main St, London", Coordinate{}, false},
		{"out_of_range", "95.0, 10.0", Coordinate{}, false},
		{"empty", "", Coordinate{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCoordinateText(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want.Lat, got.Lat, 1e-9)
				assert.InDelta(t, tt.want.Lon, got.Lon, 1e-9)
			}
		})
	}
}

func TestCenteredBox(t *testing.T) {
	box := CenteredBox(Coordinate{Lat: 51.5074, Lon: -0.1278})
	assert.InDelta(t, -1.1278, box.West, 1e-9)
	assert.InDelta(t, 50.5074, box.South, 1e-9)
	assert.InDelta(t, 0.8722, box.East, 1e-9)
	assert.InDelta(t, 52.5074, box.North, 1e-9)
}

func TestFitBox(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := FitBox(nil)
		assert.False(t, ok)
	})

	t.Run("multiple_points", func(t *testing.T) {
		box, ok := FitBox([]Coordinate{
			{Lat: 51.505, Lon: -0.09},
			{Lat: 52.52, Lon: 13.405},
		})
		require.True(t, ok)
		assert.InDelta(t, -0.59, box.West, 1e-9)
		assert.InDelta(t, 51.005, box.South, 1e-9)
		assert.InDelta(t, 13.905, box.East, 1e-9)
		assert.InDelta(t, 53.02, box.North, 1e-9)
	})
}
