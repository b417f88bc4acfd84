package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
)

type CreateOrderCommand struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	ProductID int64
	Quantity  int
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("email must be valid")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return errors.New("phone is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		return errors.New("address is required")
	}
	if c.ProductID <= 0 {
		return errors.New("product_id is required")
	}
	if c.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	users    ports.UserRepository
}

func NewCreateOrderCommandHandler(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	users ports.UserRepository,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		orders:   orders,
		products: products,
		users:    users,
	}
}

// Handle creates an order for the given customer and product. Customers are
// looked up by email and registered on first contact; the total is computed
// server side from the catalog price, never taken from the request.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	product, err := h.products.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	user, err := h.users.GetByEmail(ctx, cmd.Email)
	if errors.Is(err, ports.ErrUserNotFound) {
		user = &domain.User{
			Name:      cmd.Name,
			Email:     cmd.Email,
			Phone:     cmd.Phone,
			Address:   cmd.Address,
			CreatedAt: time.Now().UTC(),
		}
		if err := user.Validate(); err != nil {
			return nil, err
		}
		if err := h.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	order := domain.Order{
		UserID:     user.ID,
		ProductID:  product.ID,
		Quantity:   cmd.Quantity,
		TotalPrice: product.Price * int64(cmd.Quantity),
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.orders.Create(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}
