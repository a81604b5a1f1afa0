// Package app assembles the application components from loaded settings so
// the CLI commands share one construction path.
package app

import (
	"time"

	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/datastore"
	"github.com/wildscout/wildscout-go/internal/enrich"
	"github.com/wildscout/wildscout-go/internal/geocoder"
	"github.com/wildscout/wildscout-go/internal/httpclient"
	"github.com/wildscout/wildscout-go/internal/logging"
	"github.com/wildscout/wildscout-go/internal/observability"
	"github.com/wildscout/wildscout-go/internal/search"
	"github.com/wildscout/wildscout-go/internal/sources"
)

// App holds the wired application components.
type App struct {
	Settings *conf.Settings
	HTTP     *httpclient.Client
	Geocoder *geocoder.Nominatim
	Sources  []sources.Provider
	Search   *search.Service
	Store    datastore.Interface
	Metrics  *observability.Metrics
}

// New builds the component graph for the given settings. The datastore is
// opened when a persistence backend is enabled; Store stays nil otherwise.
func New(settings *conf.Settings) (*App, error) {
	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	hc := httpclient.New(&httpclient.Config{
		UserAgent: settings.Geocoder.UserAgent,
	})

	gc := geocoder.NewNominatim(geocoder.ConfigFromSettings(settings), hc)
	gc.SetMetrics(metrics.Geocoder)

	providers, err := buildSources(settings, hc)
	if err != nil {
		return nil, err
	}

	enricher, err := enrich.New(nil)
	if err != nil {
		return nil, err
	}

	store := datastore.New(settings)
	if store != nil {
		if err := store.Open(); err != nil {
			return nil, err
		}
	}

	return &App{
		Settings: settings,
		HTTP:     hc,
		Geocoder: gc,
		Sources:  providers,
		Search:   search.New(settings, gc, providers, enricher, metrics),
		Store:    store,
		Metrics:  metrics,
	}, nil
}

// buildSources constructs the enabled source clients in their fixed
// fan-out order: iNaturalist, eBird, GBIF.
func buildSources(settings *conf.Settings, hc *httpclient.Client) ([]sources.Provider, error) {
	var providers []sources.Provider

	if s := settings.Sources.INaturalist; s.Enabled {
		providers = append(providers, sources.NewINaturalist(sourceConfig(&s, ""), hc))
	}
	if s := settings.Sources.EBird; s.Enabled {
		client, err := sources.NewEBird(sourceConfig(&s.SourceSettings, s.APIKey), hc)
		if err != nil {
			return nil, err
		}
		providers = append(providers, client)
	}
	if s := settings.Sources.GBIF; s.Enabled {
		providers = append(providers, sources.NewGBIF(sourceConfig(&s, ""), hc))
	}
	return providers, nil
}

func sourceConfig(s *conf.SourceSettings, apiKey string) sources.Config {
	return sources.Config{
		BaseURL:    s.BaseURL,
		APIKey:     apiKey,
		Timeout:    time.Duration(s.TimeoutSec) * time.Second,
		CacheTTL:   time.Duration(s.CacheTTLMin) * time.Minute,
		MaxRecords: s.MaxRecords,
	}
}

// Close shuts down the component graph in reverse construction order.
func (a *App) Close() {
	if a.Search != nil {
		a.Search.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			logging.ForService("app").Warn("Failed to close datastore", "error", err)
		}
	}
	if a.Geocoder != nil {
		a.Geocoder.Close()
	}
	sources.CloseLogger()
	if a.HTTP != nil {
		a.HTTP.Close()
	}
}
