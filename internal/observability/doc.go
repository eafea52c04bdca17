// Package observability provides logging and metrics support for the journal
// federation service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Derive loggers carrying standard fields:
//
//	logger = observability.WithQueryContext(logger, "journals_in_categories_with_quartile")
//	logger = observability.WithSourceContext(logger, "category", "sqlite")
//
// # Metrics
//
//	metrics := observability.NewMetrics("journal_federation")
//	metrics.RecordSourceCall("journal", "sparql-0", "GetAll", rows, elapsed)
//	metrics.RecordSourceFailure("category", "postgres", "GetLinks", err, elapsed)
//
// # Standard Fields
//
//   - request_id: HTTP request identifier
//   - query: federated query operation
//   - source: registered backend name
//   - source_kind: journal or category
//   - operation: backend read operation
//   - reason: failure class of a backend error
//
// All components are safe for concurrent use from multiple goroutines.
package observability
