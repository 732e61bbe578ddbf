package outbox

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(ctx context.Context, eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(ctx context.Context, count int, duration time.Duration)
	RecordOutboxLag(ctx context.Context, lag int64)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventProcessed(context.Context, string, bool, time.Duration) {}
func (n *NoOpMetricsCollector) RecordBatchProcessed(context.Context, int, time.Duration)          {}
func (n *NoOpMetricsCollector) RecordOutboxLag(context.Context, int64)                            {}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// OTelMetrics implements MetricsCollector on an OpenTelemetry meter.
type OTelMetrics struct {
	events        metric.Int64Counter
	eventDuration metric.Float64Histogram
	batchSize     metric.Int64Histogram
	batchDuration metric.Float64Histogram
	pending       metric.Int64Gauge
}

func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	events, err := meter.Int64Counter("outbox_events_processed",
		metric.WithDescription("Outbox rows handled by the dispatcher, by outcome."),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create events counter: %w", err)
	}

	eventDuration, err := meter.Float64Histogram("outbox_event_duration",
		metric.WithDescription("Time spent running all handlers for one outbox row."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create event duration histogram: %w", err)
	}

	batchSize, err := meter.Int64Histogram("outbox_batch_size",
		metric.WithDescription("Rows fetched per dispatcher run."),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create batch size histogram: %w", err)
	}

	batchDuration, err := meter.Float64Histogram("outbox_batch_duration",
		metric.WithDescription("Duration of a dispatcher run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create batch duration histogram: %w", err)
	}

	pending, err := meter.Int64Gauge("outbox_pending_events",
		metric.WithDescription("Undelivered outbox rows."),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create pending gauge: %w", err)
	}

	return &OTelMetrics{
		events:        events,
		eventDuration: eventDuration,
		batchSize:     batchSize,
		batchDuration: batchDuration,
		pending:       pending,
	}, nil
}

func (m *OTelMetrics) RecordEventProcessed(ctx context.Context, eventType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", status),
	))
	m.eventDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("event_type", eventType)))
}

func (m *OTelMetrics) RecordBatchProcessed(ctx context.Context, count int, duration time.Duration) {
	m.batchSize.Record(ctx, int64(count))
	m.batchDuration.Record(ctx, duration.Seconds())
}

func (m *OTelMetrics) RecordOutboxLag(ctx context.Context, lag int64) {
	m.pending.Record(ctx, lag)
}
