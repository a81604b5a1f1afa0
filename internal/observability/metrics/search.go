// Package metrics provides Prometheus metric collectors for the search
// pipeline, the sighting sources and the geocoder.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics contains Prometheus metrics for search operations.
type SearchMetrics struct {
	registry *prometheus.Registry

	searchesTotal       *prometheus.CounterVec
	searchDuration      prometheus.Histogram
	searchResultSize    prometheus.Histogram
	rateLimitRejections prometheus.Counter
	plantsFilteredTotal prometheus.Counter

	collectors []prometheus.Collector
}

// NewSearchMetrics creates and registers new search metrics.
func NewSearchMetrics(registry *prometheus.Registry) (*SearchMetrics, error) {
	m := &SearchMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SearchMetrics) initMetrics() {
	m.searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_operations_total",
			Help: "Total number of search operations",
		},
		[]string{"status"},
	)

	m.searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of search operations end to end",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.searchResultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_result_size",
			Help:    "Number of sightings returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	m.rateLimitRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "search_rate_limit_rejections_total",
			Help: "Total number of searches rejected by the free-tier limit",
		},
	)

	m.plantsFilteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "search_plants_filtered_total",
			Help: "Total number of plant records dropped from results",
		},
	)

	m.collectors = []prometheus.Collector{
		m.searchesTotal,
		m.searchDuration,
		m.searchResultSize,
		m.rateLimitRejections,
		m.plantsFilteredTotal,
	}
}

// Describe implements the prometheus.Collector interface.
func (m *SearchMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *SearchMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordSearch records a completed search with the given status.
func (m *SearchMetrics) RecordSearch(status string) {
	m.searchesTotal.WithLabelValues(status).Inc()
}

// RecordSearchDuration records the end-to-end duration of a search in seconds.
func (m *SearchMetrics) RecordSearchDuration(seconds float64) {
	m.searchDuration.Observe(seconds)
}

// RecordResultSize records the number of sightings returned by a search.
func (m *SearchMetrics) RecordResultSize(size int) {
	m.searchResultSize.Observe(float64(size))
}

// RecordRateLimitRejection records a search rejected by the free-tier limit.
func (m *SearchMetrics) RecordRateLimitRejection() {
	m.rateLimitRejections.Inc()
}

// RecordPlantsFiltered records plant records dropped from a result set.
func (m *SearchMetrics) RecordPlantsFiltered(count int) {
	m.plantsFilteredTotal.Add(float64(count))
}
