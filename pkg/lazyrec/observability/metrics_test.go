package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a reader
// to collect metrics from.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// counterSum totals all data points of an Int64 counter.
func counterSum(t *testing.T, m *metricdata.Metrics) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordCompute(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCompute(ctx, "name", 5*time.Millisecond, nil)
	m.RecordCompute(ctx, "phone", 2*time.Millisecond, errors.New("boom"))

	rm := collectMetrics(t, reader)

	computations := findMetric(rm, "lazyrec.field.computations")
	require.NotNil(t, computations)
	assert.EqualValues(t, 2, counterSum(t, computations))

	computeErrors := findMetric(rm, "lazyrec.field.compute_errors")
	require.NotNil(t, computeErrors)
	assert.EqualValues(t, 1, counterSum(t, computeErrors))

	latency := findMetric(rm, "lazyrec.field.compute_latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.EqualValues(t, 2, count)
}

func TestRecordMemoHit(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordMemoHit(ctx, "name")
	m.RecordMemoHit(ctx, "name")
	m.RecordMemoHit(ctx, "phone")

	rm := collectMetrics(t, reader)

	memoHits := findMetric(rm, "lazyrec.field.memo_hits")
	require.NotNil(t, memoHits)
	assert.EqualValues(t, 3, counterSum(t, memoHits))
}

func TestRecordMutation(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordMutation(ctx, "foo", MutationSet)
	m.RecordMutation(ctx, "foo", MutationDelete)

	rm := collectMetrics(t, reader)

	mutations := findMetric(rm, "lazyrec.field.mutations")
	require.NotNil(t, mutations)
	assert.EqualValues(t, 2, counterSum(t, mutations))
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	assert.NotNil(t, recorder)

	// Recording must not panic regardless of backing implementation.
	recorder.RecordCompute(context.Background(), "name", time.Millisecond, nil)
	recorder.RecordMemoHit(context.Background(), "name")
	recorder.RecordMutation(context.Background(), "name", MutationSet)
}
