package sheet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the tracking pipeline.
type Metrics struct {
	Registry        *prometheus.Registry
	FetchesTotal    *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	RowsFetched     *prometheus.CounterVec
	RowsDropped     *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	FetchErrors     *prometheus.CounterVec
	QueriesTotal    *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_fetches_total",
			Help: "Total sheet export fetches by dataset and phase.",
		},
		[]string{"dataset", "phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracking_fetch_duration_seconds",
			Help:    "Latency of sheet export fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	rowsFetched := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_rows_fetched_total",
			Help: "Raw rows decoded from sheet exports.",
		},
		[]string{"dataset"},
	)
	rowsDropped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_rows_dropped_total",
			Help: "Rows excluded during normalization, by reason.",
		},
		[]string{"dataset", "reason"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_fetch_retries_total",
			Help: "Total fetch retry attempts.",
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_fetch_errors_total",
			Help: "Total fetch errors by type.",
		},
		[]string{"error_type"},
	)
	queries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_queries_total",
			Help: "Record lookups by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	registry.MustRegister(fetches, fetchDuration, rowsFetched, rowsDropped, retries, fetchErrors, queries)

	return &Metrics{
		Registry:      registry,
		FetchesTotal:  fetches,
		FetchDuration: fetchDuration,
		RowsFetched:   rowsFetched,
		RowsDropped:   rowsDropped,
		RetriesTotal:  retries,
		FetchErrors:   fetchErrors,
		QueriesTotal:  queries,
	}
}

// IncFetch increments the fetch counter for a dataset and phase.
func (m *Metrics) IncFetch(dataset Dataset, phase string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(string(dataset), phase).Inc()
}

// ObserveFetchDuration records one fetch round-trip.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// AddRows records the raw row count of one decoded export.
func (m *Metrics) AddRows(dataset Dataset, n int) {
	if m == nil {
		return
	}
	m.RowsFetched.WithLabelValues(string(dataset)).Add(float64(n))
}

// AddDropped counts rows excluded during normalization.
func (m *Metrics) AddDropped(dataset Dataset, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsDropped.WithLabelValues(string(dataset), reason).Add(float64(n))
}

// IncRetries increments the retry counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the fetch error counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(errorType).Inc()
}

// IncQuery counts one lookup by mode ("order", "document") and outcome
// ("hit", "miss", "unavailable").
func (m *Metrics) IncQuery(mode, outcome string) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(mode, outcome).Inc()
}
