// config.go: This file contains the configuration for the WildScout application.
// It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for log rotation of service log files.
type LogConfig struct {
	Enabled   bool   // true to enable file logging
	Path      string // directory for service log files
	MaxSizeMB int    // maximum size of a log file before rotation
}

// Accepted values for SearchSettings.DefaultUnit and query radius units.
const (
	UnitKm    = "km"
	UnitMiles = "miles"
)

// SearchSettings contains defaults and limits for the sighting search pipeline.
type SearchSettings struct {
	DefaultRadius   float64 // default search radius when the caller omits one
	DefaultUnit     string  // "km" or "miles"
	FreeSearchLimit int     // searches allowed for unauthenticated callers
	MaxResults      int     // cap on results returned per search, 0 for no cap
}

// GeocoderSettings contains settings for the free-text geocoding service.
type GeocoderSettings struct {
	BaseURL     string // geocoding endpoint, Nominatim-compatible
	UserAgent   string // User-Agent sent with geocoding requests
	TimeoutSec  int    // request timeout in seconds
	CacheTTLMin int    // response cache TTL in minutes
	RateLimitMS int    // milliseconds between requests
}

// SourceSettings contains common settings for a sighting data source.
type SourceSettings struct {
	Enabled     bool   // true to query this source
	BaseURL     string // source API base URL
	TimeoutSec  int    // request timeout in seconds
	CacheTTLMin int    // response cache TTL in minutes
	MaxRecords  int    // per-source record cap passed to the API
}

// EBirdSettings extends SourceSettings with the API key eBird requires.
type EBirdSettings struct {
	SourceSettings `yaml:",inline" mapstructure:",squash"`
	APIKey         string // eBird API token, sent as X-eBirdApiToken
}

// SourcesSettings groups the three sighting source configurations.
type SourcesSettings struct {
	INaturalist SourceSettings
	EBird       EBirdSettings
	GBIF        SourceSettings
}

// WebServerSettings contains settings for the HTTP API server.
type WebServerSettings struct {
	Enabled bool   // true to enable the API server
	Port    string // port to listen on
	Debug   bool   // true to enable server debug logging
}

// SQLiteSettings contains settings for the SQLite database output.
type SQLiteSettings struct {
	Enabled bool   // true to enable the SQLite store
	Path    string // path to the SQLite database file
}

// MySQLSettings contains settings for the MySQL database output.
type MySQLSettings struct {
	Enabled  bool   // true to enable the MySQL store
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL host
	Port     string // MySQL port
}

// OutputSettings groups the persistence backends.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug output globally

	Main struct {
		Name string    // node name for logs and API responses
		Log  LogConfig // service log file settings
	}

	Search    SearchSettings
	Geocoder  GeocoderSettings
	Sources   SourcesSettings
	WebServer WebServerSettings
	Output    OutputSettings

	Version string // runtime value, application version
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the global settings instance. The first
// call wins; later calls return the already-loaded settings.
func Load() (*Settings, error) {
	var loadErr error
	once.Do(func() {
		settings := &Settings{}

		initViper()

		if err := viper.Unmarshal(settings); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config into struct: %w", err)
			return
		}

		if err := ValidateSettings(settings); err != nil {
			loadErr = err
			return
		}

		settingsMutex.Lock()
		settingsInstance = settings
		settingsMutex.Unlock()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return Setting(), nil
}

// Setting returns the current global settings instance, loading it on demand.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	if _, err := Load(); err != nil {
		log.Printf("Error loading settings: %v", err)
		return nil
	}

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetSettings is an alias of Setting kept for call-site readability.
func GetSettings() *Settings {
	return Setting()
}

func initViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths := configSearchPaths()
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Error reading config file: %v", err)
			return
		}
		// No config on disk, write the embedded default to the first path
		if writeErr := createDefaultConfig(configPaths[0]); writeErr != nil {
			log.Printf("Error creating default config: %v", writeErr)
		}
	}
}

// configSearchPaths returns the directories searched for config.yaml, in order.
func configSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wildscout"))
	}
	paths = append(paths, "/etc/wildscout")
	return paths
}

// createDefaultConfig writes the embedded default config.yaml into dir.
func createDefaultConfig(dir string) error {
	data, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		return fmt.Errorf("reading embedded config: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	target := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	log.Printf("Created default configuration at %s", target)
	return nil
}

func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "WildScout")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs")
	viper.SetDefault("main.log.maxsizemb", 100)

	viper.SetDefault("search.defaultradius", 8.0)
	viper.SetDefault("search.defaultunit", "miles")
	viper.SetDefault("search.freesearchlimit", 10)
	viper.SetDefault("search.maxresults", 0)

	viper.SetDefault("geocoder.baseurl", "https://nominatim.openstreetmap.org/search")
	viper.SetDefault("geocoder.useragent", "WildScout https://github.com/wildscout/wildscout-go")
	viper.SetDefault("geocoder.timeoutsec", 10)
	viper.SetDefault("geocoder.cachettlmin", 60)
	viper.SetDefault("geocoder.ratelimitms", 1100)

	viper.SetDefault("sources.inaturalist.enabled", true)
	viper.SetDefault("sources.inaturalist.baseurl", "https://api.inaturalist.org/v1")
	viper.SetDefault("sources.inaturalist.timeoutsec", 15)
	viper.SetDefault("sources.inaturalist.cachettlmin", 10)
	viper.SetDefault("sources.inaturalist.maxrecords", 50)

	// eBird requires an API token, so the source stays off until one is set
	viper.SetDefault("sources.ebird.enabled", false)
	viper.SetDefault("sources.ebird.baseurl", "https://api.ebird.org/v2")
	viper.SetDefault("sources.ebird.timeoutsec", 15)
	viper.SetDefault("sources.ebird.cachettlmin", 10)
	viper.SetDefault("sources.ebird.maxrecords", 50)
	viper.SetDefault("sources.ebird.apikey", "")

	viper.SetDefault("sources.gbif.enabled", true)
	viper.SetDefault("sources.gbif.baseurl", "https://api.gbif.org/v1")
	viper.SetDefault("sources.gbif.timeoutsec", 15)
	viper.SetDefault("sources.gbif.cachettlmin", 10)
	viper.SetDefault("sources.gbif.maxrecords", 50)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8090")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "wildscout.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
