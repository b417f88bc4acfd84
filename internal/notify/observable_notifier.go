package notify

import (
	"context"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

// ObservableNotifier wraps a notifier with publish latency metrics.
type ObservableNotifier struct {
	next    ports.Notifier
	metrics *Metrics
}

func NewObservableNotifier(next ports.Notifier, metrics *Metrics) *ObservableNotifier {
	return &ObservableNotifier{next: next, metrics: metrics}
}

func (o *ObservableNotifier) PaymentCompleted(ctx context.Context, orderID int64, transactionRef string) error {
	start := time.Now()
	err := o.next.PaymentCompleted(ctx, orderID, transactionRef)
	o.metrics.RecordPublish(ctx, routingKeyPaymentCompleted, time.Since(start).Seconds(), err == nil)
	return err
}
