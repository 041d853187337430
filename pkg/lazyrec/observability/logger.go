// Package observability provides production-grade observability for
// lazyrec: structured logging, metrics, and distributed tracing around
// field computation.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds record context to a logger.
// Returns a new logger with the record_id field, or nil for a nil
// logger so downstream Log* helpers stay no-ops.
func EnrichLogger(logger *slog.Logger, recordID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("record_id", recordID),
	)
}

// LogComputeStart logs the start of a field computation.
func LogComputeStart(logger *slog.Logger, field string) {
	if logger == nil {
		return
	}
	logger.Debug("field compute starting",
		slog.String("field", field),
	)
}

// LogComputeComplete logs successful field computation.
func LogComputeComplete(logger *slog.Logger, field string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("field compute completed",
		slog.String("field", field),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogComputeError logs a field computation failure.
func LogComputeError(logger *slog.Logger, field string, err error) {
	if logger == nil {
		return
	}
	logger.Error("field compute failed",
		slog.String("field", field),
		slog.String("error", err.Error()),
	)
}

// LogFieldSet logs an explicit field write.
func LogFieldSet(logger *slog.Logger, field string) {
	if logger == nil {
		return
	}
	logger.Debug("field set",
		slog.String("field", field),
	)
}

// LogFieldDelete logs a field deletion.
func LogFieldDelete(logger *slog.Logger, field string) {
	if logger == nil {
		return
	}
	logger.Debug("field deleted",
		slog.String("field", field),
	)
}
