package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

// PaymentStatusQuery asks for the reconciled state of a payment attempt.
type PaymentStatusQuery struct {
	TransactionRef string
}

func (q PaymentStatusQuery) Validate() error {
	if strings.TrimSpace(q.TransactionRef) == "" {
		return errors.New("transaction_ref is required")
	}
	return nil
}

type PaymentStatusQueryHandler struct {
	repo    ports.Repository
	gateway ports.Gateway
	logger  *slog.Logger
}

func NewPaymentStatusQueryHandler(repo ports.Repository, gateway ports.Gateway, logger *slog.Logger) *PaymentStatusQueryHandler {
	return &PaymentStatusQueryHandler{
		repo:    repo,
		gateway: gateway,
		logger:  logger,
	}
}

// Handle returns the reconciled payment record. Terminal payments are
// served from storage without contacting the gateway. Pending payments
// trigger a live status check; if the gateway is unreachable the last known
// state is returned and the caller keeps seeing "pending". The pair is
// persisted only when the reported state actually changes the payment
// status.
func (h *PaymentStatusQueryHandler) Handle(ctx context.Context, query PaymentStatusQuery) (*ports.Record, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.repo.GetByTransactionRef(ctx, query.TransactionRef)
	if err != nil {
		return nil, err
	}

	if rec.Payment.Status.Terminal() {
		return rec, nil
	}

	status, err := h.gateway.CheckStatus(ctx, query.TransactionRef)
	if err != nil {
		h.logger.WarnContext(ctx, "gateway status check failed, serving stored state",
			"transaction_ref", query.TransactionRef,
			"error", err,
		)
		return rec, nil
	}

	t := domain.Reconcile(status.State)
	if t.Payment != rec.Payment.Status {
		if err := h.repo.ApplyTransition(ctx, rec.Payment.ID, rec.Payment.OrderID, t); err != nil {
			return nil, err
		}
		rec.Payment.Status = t.Payment
		rec.OrderStatus = t.Order
	}

	return rec, nil
}
