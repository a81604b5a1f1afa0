package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns a minimal settings struct that passes validation.
func validSettings() *Settings {
	s := &Settings{}
	s.Search.DefaultRadius = 8.0
	s.Search.DefaultUnit = UnitMiles
	s.Search.FreeSearchLimit = 10
	s.Geocoder.BaseURL = "https://nominatim.openstreetmap.org/search"
	s.Sources.INaturalist.Enabled = true
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{
			name:   "non-positive radius",
			mutate: func(s *Settings) { s.Search.DefaultRadius = 0 },
		},
		{
			name:   "unknown unit",
			mutate: func(s *Settings) { s.Search.DefaultUnit = "leagues" },
		},
		{
			name:   "negative free limit",
			mutate: func(s *Settings) { s.Search.FreeSearchLimit = -1 },
		},
		{
			name:   "missing geocoder url",
			mutate: func(s *Settings) { s.Geocoder.BaseURL = "" },
		},
		{
			name:   "no sources enabled",
			mutate: func(s *Settings) { s.Sources.INaturalist.Enabled = false },
		},
		{
			name: "ebird without api key",
			mutate: func(s *Settings) {
				s.Sources.EBird.Enabled = true
				s.Sources.EBird.APIKey = ""
			},
		},
		{
			name: "two persistence backends",
			mutate: func(s *Settings) {
				s.Output.SQLite.Enabled = true
				s.Output.MySQL.Enabled = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}

func TestValidateSettingsUnitCaseInsensitive(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Search.DefaultUnit = "KM"
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettingsEBirdWithKey(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Sources.EBird.Enabled = true
	s.Sources.EBird.APIKey = "token"
	assert.NoError(t, ValidateSettings(s))
}
