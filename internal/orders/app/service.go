package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/app/commands"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/app/queries"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/metrics"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	orders             ports.OrderRepository
	products           ports.ProductRepository
	idemStore          ports.IdempotencyStore
	metrics            *metrics.Metrics
	createOrderHandler commands.CommandHandler
	detailHandler      *queries.GetOrderDetailQueryHandler
}

// NewService wires required dependencies.
func NewService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	users ports.UserRepository,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCreateOrderCommandHandler(orders, products, users)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		orders:             orders,
		products:           products,
		idemStore:          idem,
		metrics:            metrics,
		createOrderHandler: observableHandler,
		detailHandler:      queries.NewGetOrderDetailQueryHandler(orders),
	}
}

// CreateOrderInput captures the order form payload.
type CreateOrderInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrder registers the customer if needed and creates a pending order.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	return s.createOrderHandler.Handle(ctx, cmd)
}

// GetOrderDetail retrieves the order-status view for an order.
func (s *Service) GetOrderDetail(ctx context.Context, id int64) (*domain.Detail, error) {
	return s.detailHandler.Handle(ctx, queries.GetOrderDetailQuery{OrderID: id})
}

// ListOrders returns all orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Summary, error) {
	return s.orders.List(ctx)
}

// ListProducts returns the seeded catalog.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// UpdateOrderStatus moves an order to the given fulfillment status.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.metrics.RecordStatusUpdate(ctx, string(status))
	return nil
}

// Stats aggregates the admin dashboard numbers.
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.orders.Stats(ctx)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
