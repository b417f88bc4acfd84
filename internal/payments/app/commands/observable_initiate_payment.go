package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/metrics"
	"github.com/john-jeavons/kenya-ceramic-project/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableInitiateHandler struct {
	handler InitiateHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableInitiateHandler(handler InitiateHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableInitiateHandler {
	return &ObservableInitiateHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableInitiateHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "InitiatePaymentCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordInitiationDuration(ctx, duration)
		o.metrics.RecordInitiated(ctx, string(cmd.Method), success)
	}()

	o.logger.InfoContext(ctx, "initiating payment",
		"order_id", cmd.OrderID,
		"amount", cmd.Amount,
		"method", cmd.Method,
	)

	result, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to initiate payment",
			"error", err,
			"order_id", cmd.OrderID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int64("payment.id", result.Payment.ID),
		attribute.Int64("payment.order_id", result.Payment.OrderID),
		attribute.String("payment.method", string(result.Payment.Method)),
		attribute.String("payment.transaction_ref", result.Payment.TransactionRef),
	)

	o.logger.InfoContext(ctx, "payment initiated",
		"order_id", result.Payment.OrderID,
		"transaction_ref", result.Payment.TransactionRef,
		"api_ref", result.APIRef,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return result, nil
}
