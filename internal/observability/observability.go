// Package observability wires the application's Prometheus metric
// collectors into a single registry and exposes an HTTP handler for it.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wildscout/wildscout-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Search   *metrics.SearchMetrics
	Source   *metrics.SourceMetrics
	Geocoder *metrics.GeocoderMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any collector fails to register.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	searchMetrics, err := metrics.NewSearchMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create search metrics: %w", err)
	}

	sourceMetrics, err := metrics.NewSourceMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create source metrics: %w", err)
	}

	geocoderMetrics, err := metrics.NewGeocoderMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoder metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Search:   searchMetrics,
		Source:   sourceMetrics,
		Geocoder: geocoderMetrics,
	}, nil
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler that serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
