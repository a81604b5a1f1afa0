// validate.go: settings validation run once at load time.
package conf

import (
	"fmt"
	"strings"
)

// ValidateSettings checks the loaded settings for values the pipeline cannot
// work with. It returns the first problem found.
func ValidateSettings(s *Settings) error {
	if s.Search.DefaultRadius <= 0 {
		return fmt.Errorf("search.defaultradius must be positive, got %f", s.Search.DefaultRadius)
	}

	switch strings.ToLower(s.Search.DefaultUnit) {
	case UnitKm, UnitMiles:
	default:
		return fmt.Errorf("search.defaultunit must be \"km\" or \"miles\", got %q", s.Search.DefaultUnit)
	}

	if s.Search.FreeSearchLimit < 0 {
		return fmt.Errorf("search.freesearchlimit cannot be negative, got %d", s.Search.FreeSearchLimit)
	}

	if s.Geocoder.BaseURL == "" {
		return fmt.Errorf("geocoder.baseurl is required")
	}

	if !s.Sources.INaturalist.Enabled && !s.Sources.EBird.Enabled && !s.Sources.GBIF.Enabled {
		return fmt.Errorf("at least one sighting source must be enabled")
	}

	if s.Sources.EBird.Enabled && s.Sources.EBird.APIKey == "" {
		// eBird silently rejects unauthenticated requests, warn via error only
		// when the operator explicitly enabled it without a key.
		return fmt.Errorf("sources.ebird.apikey is required when the eBird source is enabled")
	}

	if s.Output.SQLite.Enabled && s.Output.MySQL.Enabled {
		return fmt.Errorf("only one of output.sqlite and output.mysql may be enabled")
	}

	return nil
}
