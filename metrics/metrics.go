// Package metrics provides gorkrepair.Metrics sinks.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for repair metrics.
const meterName = "github.com/sicko7947/gorkrepair"

// RepushCounterName is the counter incremented once per successful re-push
const RepushCounterName = "workflow_repair.queue.repush"

// Noop discards all events
type Noop struct{}

// RecordRepush does nothing
func (Noop) RecordRepush(context.Context, string) {}

// OTel records repair events as OpenTelemetry instruments
type OTel struct {
	repushes metric.Int64Counter
}

// NewOTelWithMeter returns a sink using the provided meter.
func NewOTelWithMeter(meter metric.Meter) *OTel {
	repushes, err := meter.Int64Counter(
		RepushCounterName,
		metric.WithDescription("Messages pushed back onto a queue by the repair service"),
		metric.WithUnit("{message}"),
	)
	_ = err // noop fallback guaranteed by OTel API contract

	return &OTel{repushes: repushes}
}

// RecordRepush counts one re-push, keyed by queue name
func (o *OTel) RecordRepush(ctx context.Context, queueName string) {
	o.repushes.Add(ctx, 1, metric.WithAttributes(attribute.String("queue", queueName)))
}
