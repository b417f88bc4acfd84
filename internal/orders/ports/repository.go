package ports

import (
	"context"
	"errors"

	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Summary, error)
	GetDetail(ctx context.Context, id int64) (*domain.Detail, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	Stats(ctx context.Context) (*domain.Stats, error)
}

// ProductRepository reads the seeded catalog.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// UserRepository finds or registers customers by email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrProductNotFound is returned when the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound is returned when no customer matches the email.
	ErrUserNotFound = errors.New("user not found")
)
