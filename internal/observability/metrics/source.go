package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SourceMetrics contains Prometheus metrics for sighting source fetches.
type SourceMetrics struct {
	registry *prometheus.Registry

	fetchesTotal   *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	recordsFetched *prometheus.HistogramVec

	collectors []prometheus.Collector
}

// NewSourceMetrics creates and registers new source metrics.
func NewSourceMetrics(registry *prometheus.Registry) (*SourceMetrics, error) {
	m := &SourceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SourceMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Total number of fetches per sighting source",
		},
		[]string{"source", "status"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Duration of sighting source fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	m.recordsFetched = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_records_fetched",
			Help:    "Number of records returned per source fetch",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"source"},
	)

	m.collectors = []prometheus.Collector{
		m.fetchesTotal,
		m.fetchDuration,
		m.recordsFetched,
	}
}

// Describe implements the prometheus.Collector interface.
func (m *SourceMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *SourceMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordFetch records a source fetch with the given status.
func (m *SourceMetrics) RecordFetch(source, status string) {
	m.fetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordFetchDuration records the duration of a source fetch in seconds.
func (m *SourceMetrics) RecordFetchDuration(source string, seconds float64) {
	m.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordRecordsFetched records the number of records a fetch returned.
func (m *SourceMetrics) RecordRecordsFetched(source string, count int) {
	m.recordsFetched.WithLabelValues(source).Observe(float64(count))
}
