package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GeocoderMetrics contains Prometheus metrics for geocoding operations.
type GeocoderMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	cacheOpsTotal   *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewGeocoderMetrics creates and registers new geocoder metrics.
func NewGeocoderMetrics(registry *prometheus.Registry) (*GeocoderMetrics, error) {
	m := &GeocoderMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GeocoderMetrics) initMetrics() {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocoder_requests_total",
			Help: "Total number of geocoding requests",
		},
		[]string{"status"},
	)

	m.requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geocoder_request_duration_seconds",
			Help:    "Duration of geocoding requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.cacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocoder_cache_operations_total",
			Help: "Geocoder cache operations by result",
		},
		[]string{"result"},
	)

	m.collectors = []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.cacheOpsTotal,
	}
}

// Describe implements the prometheus.Collector interface.
func (m *GeocoderMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *GeocoderMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordRequest records a geocoding request with the given status.
func (m *GeocoderMetrics) RecordRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// RecordRequestDuration records the duration of a geocoding request in seconds.
func (m *GeocoderMetrics) RecordRequestDuration(seconds float64) {
	m.requestDuration.Observe(seconds)
}

// RecordCacheOperation records a geocoder cache hit or miss.
func (m *GeocoderMetrics) RecordCacheOperation(result string) {
	m.cacheOpsTotal.WithLabelValues(result).Inc()
}
