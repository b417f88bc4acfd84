package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	paymentsInitiatedTotal metric.Int64Counter
	initiationDuration     metric.Float64Histogram
	webhooksTotal          metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.paymentsInitiatedTotal, err = meter.Int64Counter(
		"payments_initiated_total",
		metric.WithDescription("Total number of payment initiation attempts"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments_initiated_total counter: %w", err)
	}

	m.initiationDuration, err = meter.Float64Histogram(
		"payment_initiation_duration_seconds",
		metric.WithDescription("Duration of payment initiation operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_initiation_duration histogram: %w", err)
	}

	m.webhooksTotal, err = meter.Int64Counter(
		"payment_webhooks_total",
		metric.WithDescription("Total number of gateway webhook deliveries processed"),
		metric.WithUnit("{webhook}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_webhooks_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordInitiated(ctx context.Context, method string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.paymentsInitiatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordInitiationDuration(ctx context.Context, durationSeconds float64) {
	m.initiationDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordWebhook(ctx context.Context, state string) {
	m.webhooksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", state),
	))
}
