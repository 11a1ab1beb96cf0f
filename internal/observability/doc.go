// Package observability provides the observability infrastructure for the
// ingestion pipeline: structured logging and Prometheus metrics.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "newsatlas/internal/observability/logging"
//	    "newsatlas/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("worker started")
//
//	    metrics.RecordArticleIngested(metrics.OutcomeCreated)
//	}
package observability
