// Package notify delivers payment-completion events to downstream consumers
// such as fulfillment and customer messaging.
package notify

import (
	"context"
	"log/slog"
)

// NoopNotifier logs completions without publishing them. Useful for local
// dev before wiring a broker.
type NoopNotifier struct{}

// NewNoopNotifier returns a new no-op notifier.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) PaymentCompleted(_ context.Context, orderID int64, transactionRef string) error {
	slog.Debug("event::payment_completed", "order_id", orderID, "transaction_ref", transactionRef)
	return nil
}
