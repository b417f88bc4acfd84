package queries

import (
	"context"
	"errors"

	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
)

// GetOrderDetailQuery represents a request for the order-status view.
type GetOrderDetailQuery struct {
	OrderID int64
}

// Validate ensures the query has valid parameters.
func (q GetOrderDetailQuery) Validate() error {
	if q.OrderID <= 0 {
		return errors.New("order_id is required")
	}
	return nil
}

// GetOrderDetailQueryHandler executes GetOrderDetailQuery.
type GetOrderDetailQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderDetailQueryHandler constructs a GetOrderDetailQueryHandler.
func NewGetOrderDetailQueryHandler(repo ports.OrderRepository) *GetOrderDetailQueryHandler {
	return &GetOrderDetailQueryHandler{repo: repo}
}

// Handle retrieves the order joined with its customer, product and most
// recent payment attempt.
func (h *GetOrderDetailQueryHandler) Handle(ctx context.Context, query GetOrderDetailQuery) (*domain.Detail, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	detail, err := h.repo.GetDetail(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}

	return detail, nil
}
