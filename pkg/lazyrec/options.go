package lazyrec

import (
	"log/slog"

	"github.com/randalmurphal/lazyrec/pkg/lazyrec/observability"
)

// factoryConfig holds per-factory behavior shared by all records
// the factory produces.
type factoryConfig struct {
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
	cycleGuard bool
}

// defaultFactoryConfig returns the default configuration:
// no logging, no-op metrics and tracing, no cycle guard.
func defaultFactoryConfig() factoryConfig {
	return factoryConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Factory at Compile time.
type Option func(*factoryConfig)

// WithLogger enables structured logging of field computation and
// mutation on records produced by the factory. Log lines carry
// record_id and field attributes.
//
// A nil logger disables logging (the default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *factoryConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for records produced by the
// factory. Use observability.NewMetricsRecorder() for OpenTelemetry
// metrics. Default: no-op.
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(c *factoryConfig) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// WithTracing sets the span manager for records produced by the
// factory. Use observability.NewSpanManager() for OpenTelemetry
// spans around field computation. Default: no-op.
func WithTracing(spans observability.SpanManager) Option {
	return func(c *factoryConfig) {
		if spans != nil {
			c.spans = spans
		}
	}
}

// WithCycleGuard enables fail-fast detection of self-referential
// compute functions. A field whose computation re-enters itself
// (directly or through sibling reads) makes Get return a *CycleError
// carrying the dependency path instead of recursing until the stack
// overflows.
//
// Off by default: without the guard, a cyclic specification recurses
// unbounded, which is the contract cyclic-spec authors signed up for.
func WithCycleGuard() Option {
	return func(c *factoryConfig) {
		c.cycleGuard = true
	}
}
