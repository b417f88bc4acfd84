// Package memory provides an in-memory payment store backed by the orders
// memory repository, useful for tests.
package memory

import (
	"context"
	"sync"

	ordersmemory "github.com/john-jeavons/kenya-ceramic-project/internal/orders/adapters/memory"
	ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

type Repository struct {
	mu       sync.RWMutex
	nextID   int64
	payments map[int64]domain.Payment
	orders   *ordersmemory.Repository
}

var _ ports.Repository = (*Repository)(nil)

func NewRepository(orders *ordersmemory.Repository) *Repository {
	return &Repository{
		payments: make(map[int64]domain.Payment),
		orders:   orders,
	}
}

func (r *Repository) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	payment.ID = r.nextID
	r.payments[payment.ID] = *payment
	return nil
}

func (r *Repository) CreateAndMarkOrder(ctx context.Context, payment *domain.Payment, status ordersdomain.OrderStatus) error {
	if err := r.orders.UpdateStatus(ctx, payment.OrderID, status); err != nil {
		return err
	}
	return r.Create(ctx, payment)
}

func (r *Repository) GetByTransactionRef(ctx context.Context, ref string) (*ports.Record, error) {
	r.mu.RLock()
	var found *domain.Payment
	for _, payment := range r.payments {
		if payment.TransactionRef == ref {
			copy := payment
			found = &copy
			break
		}
	}
	r.mu.RUnlock()

	if found == nil {
		return nil, ports.ErrNotFound
	}

	order, err := r.orders.GetByID(ctx, found.OrderID)
	if err != nil {
		return nil, err
	}

	return &ports.Record{Payment: *found, OrderStatus: order.Status}, nil
}

func (r *Repository) ApplyTransition(ctx context.Context, paymentID, orderID int64, t domain.Transition) error {
	r.mu.Lock()
	payment, ok := r.payments[paymentID]
	if !ok {
		r.mu.Unlock()
		return ports.ErrNotFound
	}
	payment.Status = t.Payment
	r.payments[paymentID] = payment
	r.mu.Unlock()

	return r.orders.UpdateStatus(ctx, orderID, t.Order)
}
