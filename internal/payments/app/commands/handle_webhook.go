package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

// WebhookCommand carries a gateway push notification. FailedReason and
// FailedCode are informational; the transition depends on State alone.
type WebhookCommand struct {
	InvoiceID    string
	State        string
	APIRef       string
	FailedReason string
	FailedCode   string
}

func (c WebhookCommand) Validate() error {
	if c.InvoiceID == "" {
		return errors.New("invoice_id is required")
	}
	if c.State == "" {
		return errors.New("state is required")
	}
	return nil
}

type WebhookCommandHandler struct {
	repo     ports.Repository
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewWebhookCommandHandler(repo ports.Repository, notifier ports.Notifier, logger *slog.Logger) *WebhookCommandHandler {
	return &WebhookCommandHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle applies the reported gateway state to the payment/order pair.
// Replaying an identical payload converges on the same stored result, and a
// payment that already reached a terminal status is returned as-is: no
// transition leaves completed or failed. When the payment newly completes,
// the confirmation notification is fired without blocking the webhook
// response; the state change is already committed by then.
func (h *WebhookCommandHandler) Handle(ctx context.Context, cmd WebhookCommand) (*ports.Record, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.repo.GetByTransactionRef(ctx, cmd.InvoiceID)
	if err != nil {
		return nil, err
	}

	if rec.Payment.Status.Terminal() {
		return rec, nil
	}

	t := domain.Reconcile(domain.GatewayState(cmd.State))
	if t.Payment != rec.Payment.Status || t.Order != rec.OrderStatus {
		if err := h.repo.ApplyTransition(ctx, rec.Payment.ID, rec.Payment.OrderID, t); err != nil {
			return nil, err
		}
	}

	completed := t.Payment == domain.StatusCompleted
	rec.Payment.Status = t.Payment
	rec.OrderStatus = t.Order

	if completed && h.notifier != nil {
		go h.notify(rec.Payment.OrderID, rec.Payment.TransactionRef)
	}

	return rec, nil
}

// notify runs detached from the webhook request; its failure must not fail
// the webhook response.
func (h *WebhookCommandHandler) notify(orderID int64, transactionRef string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.notifier.PaymentCompleted(ctx, orderID, transactionRef); err != nil {
		h.logger.Warn("payment completion notification failed",
			"order_id", orderID,
			"transaction_ref", transactionRef,
			"error", err,
		)
	}
}
