package ports

import (
	"context"
	"errors"

	ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
)

// Record is a payment joined with the current status of its order, keyed by
// transaction_ref. It is what the reconciler reads and what the status
// endpoint returns.
type Record struct {
	Payment     domain.Payment           `json:"payment"`
	OrderStatus ordersdomain.OrderStatus `json:"order_status"`
}

// Repository persists payments. The pair-updating methods must commit the
// payment and order rows as a single unit or not at all.
type Repository interface {
	// Create inserts a payment attempt without touching its order. Used to
	// record failed gateway calls.
	Create(ctx context.Context, payment *domain.Payment) error

	// CreateAndMarkOrder inserts a payment attempt and moves the order to
	// the given status in one transaction. Used on successful initiation.
	CreateAndMarkOrder(ctx context.Context, payment *domain.Payment, status ordersdomain.OrderStatus) error

	// GetByTransactionRef looks up a payment and its order status.
	GetByTransactionRef(ctx context.Context, ref string) (*Record, error)

	// ApplyTransition writes both statuses in one transaction.
	ApplyTransition(ctx context.Context, paymentID, orderID int64, t domain.Transition) error
}

var (
	// ErrNotFound is returned when no payment matches the transaction_ref.
	ErrNotFound = errors.New("payment not found")
)
