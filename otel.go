package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// engineMetrics holds the OpenTelemetry metric instruments for engine
// queries. These are created once during New and reused for all calls.
type engineMetrics struct {
	// queryDuration records query duration in milliseconds per
	// operation.
	queryDuration metric.Float64Histogram

	// queryCounter increments per query, tagged with operation and
	// outcome.
	queryCounter metric.Int64Counter

	// truncatedCounter increments per truncated attack path search.
	truncatedCounter metric.Int64Counter

	// pathCount records paths returned per attack path query.
	pathCount metric.Int64Histogram
}

// initMetrics creates the metric instruments. Returns nil when no meter
// is configured.
func initMetrics(meter metric.Meter) (*engineMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	m := &engineMetrics{}
	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"engine.query.duration",
		metric.WithDescription("Engine query duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	m.queryCounter, err = meter.Int64Counter(
		"engine.query.count",
		metric.WithDescription("Number of engine queries served"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create query counter: %w", err)
	}

	m.truncatedCounter, err = meter.Int64Counter(
		"engine.search.truncated",
		metric.WithDescription("Number of attack path searches that hit a budget"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create truncation counter: %w", err)
	}

	m.pathCount, err = meter.Int64Histogram(
		"engine.search.paths",
		metric.WithDescription("Paths returned per attack path query"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create path histogram: %w", err)
	}

	return m, nil
}

// record captures one query's duration and outcome. Safe on a nil
// receiver so call sites need no configuration checks.
func (m *engineMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.queryDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	m.queryCounter.Add(ctx, 1, attrs)
}

// recordSearch captures attack path result shape.
func (m *engineMetrics) recordSearch(ctx context.Context, paths int, truncated bool) {
	if m == nil {
		return
	}
	m.pathCount.Record(ctx, int64(paths))
	if truncated {
		m.truncatedCounter.Add(ctx, 1)
	}
}
