package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helixir/journal-federation-service/internal/domain"
)

// Metrics contains all Prometheus metrics for the journal federation service.
// Metrics are organized by subsystem: federated queries, backend source calls,
// normalization and HTTP. All collectors are registered via promauto with the
// default Prometheus registry.
type Metrics struct {
	// QueriesTotal counts federated query executions, labeled by query name.
	QueriesTotal *prometheus.CounterVec

	// QueryDuration observes federated query duration in seconds, labeled by query name.
	QueryDuration *prometheus.HistogramVec

	// QueryResultSize observes the number of entities returned, labeled by query name.
	QueryResultSize *prometheus.HistogramVec

	// SourceCallsTotal counts backend read calls, labeled by kind, source and operation.
	SourceCallsTotal *prometheus.CounterVec

	// SourceCallsFailed counts backend read failures, labeled by kind, source,
	// operation and reason (backend_unavailable, query_rejected, malformed_result, unknown).
	SourceCallsFailed *prometheus.CounterVec

	// SourceCallDuration observes backend read duration in seconds, labeled by kind and source.
	SourceCallDuration *prometheus.HistogramVec

	// SourceRowsReturned counts rows contributed by each backend, labeled by kind and source.
	SourceRowsReturned *prometheus.CounterVec

	// DuplicateRowsRemoved counts exact-duplicate triples removed while merging.
	DuplicateRowsRemoved prometheus.Counter

	// MalformedRowsDropped counts rows skipped by normalization or mapping.
	MalformedRowsDropped prometheus.Counter

	// HTTPRequestsTotal counts API requests, labeled by route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes API request duration in seconds, labeled by route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Queries
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "federation",
			Name:      "queries_total",
			Help:      "Total number of federated queries executed",
		}, []string{"query"}),
		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "federation",
			Name:      "query_duration_seconds",
			Help:      "Duration of federated queries in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"query"}),
		QueryResultSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "federation",
			Name:      "query_result_size",
			Help:      "Number of entities returned per federated query",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"query"}),

		// Sources
		SourceCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "calls_total",
			Help:      "Total number of backend source read calls",
		}, []string{"kind", "source", "operation"}),
		SourceCallsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "calls_failed_total",
			Help:      "Total number of failed backend source read calls",
		}, []string{"kind", "source", "operation", "reason"}),
		SourceCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "call_duration_seconds",
			Help:      "Duration of backend source read calls in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind", "source"}),
		SourceRowsReturned: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "rows_returned_total",
			Help:      "Total number of rows returned by backend sources",
		}, []string{"kind", "source"}),

		// Normalization
		DuplicateRowsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "federation",
			Name:      "duplicate_rows_removed_total",
			Help:      "Total number of exact-duplicate triples removed while merging sources",
		}),
		MalformedRowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "federation",
			Name:      "malformed_rows_dropped_total",
			Help:      "Total number of malformed rows skipped during normalization",
		}),

		// HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP API requests",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// RecordQuery records a completed federated query.
func (m *Metrics) RecordQuery(query string, resultSize int, durationSeconds float64) {
	m.QueriesTotal.WithLabelValues(query).Inc()
	m.QueryDuration.WithLabelValues(query).Observe(durationSeconds)
	m.QueryResultSize.WithLabelValues(query).Observe(float64(resultSize))
}

// RecordSourceCall records a successful backend read.
func (m *Metrics) RecordSourceCall(kind, source, operation string, rows int, durationSeconds float64) {
	m.SourceCallsTotal.WithLabelValues(kind, source, operation).Inc()
	m.SourceCallDuration.WithLabelValues(kind, source).Observe(durationSeconds)
	m.SourceRowsReturned.WithLabelValues(kind, source).Add(float64(rows))
}

// RecordSourceFailure records a failed backend read, labeled with the
// failure reason derived from err.
func (m *Metrics) RecordSourceFailure(kind, source, operation string, err error, durationSeconds float64) {
	m.SourceCallsTotal.WithLabelValues(kind, source, operation).Inc()
	m.SourceCallsFailed.WithLabelValues(kind, source, operation, domain.FailureReason(err)).Inc()
	m.SourceCallDuration.WithLabelValues(kind, source).Observe(durationSeconds)
}

// RecordDuplicatesRemoved adds count to the duplicate-row counter.
func (m *Metrics) RecordDuplicatesRemoved(count int) {
	if count > 0 {
		m.DuplicateRowsRemoved.Add(float64(count))
	}
}

// RecordRowsDropped adds count to the malformed-row counter.
func (m *Metrics) RecordRowsDropped(count int) {
	if count > 0 {
		m.MalformedRowsDropped.Add(float64(count))
	}
}

// RecordHTTPRequest records a served API request.
func (m *Metrics) RecordHTTPRequest(route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}
