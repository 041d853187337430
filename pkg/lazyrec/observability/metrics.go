package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Mutation identifies an explicit record mutation for metrics.
type Mutation string

// Mutation kinds.
const (
	MutationSet    Mutation = "set"
	MutationDelete Mutation = "delete"
)

// MetricsRecorder records lazyrec metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompute records one compute function invocation with its
	// duration and error status.
	RecordCompute(ctx context.Context, field string, duration time.Duration, err error)

	// RecordMemoHit records a read served from the memoized store.
	RecordMemoHit(ctx context.Context, field string)

	// RecordMutation records an explicit Set or Delete.
	RecordMutation(ctx context.Context, field string, op Mutation)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	computations   metric.Int64Counter
	computeLatency metric.Float64Histogram
	computeErrors  metric.Int64Counter
	memoHits       metric.Int64Counter
	mutations      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("lazyrec")

	computations, err := meter.Int64Counter("lazyrec.field.computations",
		metric.WithDescription("Number of compute function invocations"),
	)
	if err != nil {
		return nil, err
	}

	computeLatency, err := meter.Float64Histogram("lazyrec.field.compute_latency_ms",
		metric.WithDescription("Compute function latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	computeErrors, err := meter.Int64Counter("lazyrec.field.compute_errors",
		metric.WithDescription("Number of compute function failures"),
	)
	if err != nil {
		return nil, err
	}

	memoHits, err := meter.Int64Counter("lazyrec.field.memo_hits",
		metric.WithDescription("Number of reads served from the memoized store"),
	)
	if err != nil {
		return nil, err
	}

	mutations, err := meter.Int64Counter("lazyrec.field.mutations",
		metric.WithDescription("Number of explicit set/delete mutations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		computations:   computations,
		computeLatency: computeLatency,
		computeErrors:  computeErrors,
		memoHits:       memoHits,
		mutations:      mutations,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompute records one compute function invocation.
func (m *otelMetrics) RecordCompute(ctx context.Context, field string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("field", field),
	}

	m.computations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.computeLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.computeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordMemoHit records a read served from the memoized store.
func (m *otelMetrics) RecordMemoHit(ctx context.Context, field string) {
	m.memoHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", field),
	))
}

// RecordMutation records an explicit Set or Delete.
func (m *otelMetrics) RecordMutation(ctx context.Context, field string, op Mutation) {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", field),
		attribute.String("op", string(op)),
	))
}
