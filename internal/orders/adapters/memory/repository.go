// Package memory provides in-memory stores useful for local development
// and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
)

// Repository is an in-memory ports.OrderRepository.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[int64]domain.Order)}
}

// Create stores a new order and assigns its identifier.
func (r *Repository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = *order
	return nil
}

// Put inserts an order with a preassigned ID, for seeding tests.
func (r *Repository) Put(order domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID > r.nextID {
		r.nextID = order.ID
	}
	r.orders[order.ID] = order
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := order
	return &copy, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]domain.Summary, 0, len(r.orders))
	for _, order := range r.orders {
		summaries = append(summaries, domain.Summary{
			ID:         order.ID,
			Quantity:   order.Quantity,
			TotalPrice: order.TotalPrice,
			Status:     order.Status,
			CreatedAt:  order.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

func (r *Repository) GetDetail(_ context.Context, id int64) (*domain.Detail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &domain.Detail{
		ID:         order.ID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
	}, nil
}

func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}

	order.Status = status
	r.orders[id] = order
	return nil
}

func (r *Repository) Stats(_ context.Context) (*domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.Stats{}
	customers := make(map[int64]struct{})
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var thisMonth, lastMonth int
	for _, order := range r.orders {
		stats.TotalOrders++
		customers[order.UserID] = struct{}{}
		if order.Status != domain.StatusCancelled {
			stats.TotalRevenue += order.TotalPrice
		}
		switch order.Status {
		case domain.StatusPending:
			stats.PendingOrders++
		case domain.StatusConfirmed:
			stats.ConfirmedOrders++
		case domain.StatusShipped:
			stats.ShippedOrders++
		case domain.StatusDelivered:
			stats.DeliveredOrders++
		case domain.StatusCancelled:
			stats.CancelledOrders++
		}
		if !order.CreatedAt.Before(monthStart) {
			thisMonth++
		} else if order.CreatedAt.After(monthStart.AddDate(0, -1, 0)) {
			lastMonth++
		}
	}
	stats.TotalCustomers = len(customers)
	if lastMonth > 0 {
		stats.GrowthRate = (thisMonth - lastMonth) * 100 / lastMonth
	}

	return stats, nil
}

// ProductRepository is an in-memory ports.ProductRepository seeded by tests.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[int64]domain.Product)}
}

func (r *ProductRepository) Add(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

func (r *ProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	copy := product
	return &copy, nil
}

func (r *ProductRepository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// UserRepository is an in-memory ports.UserRepository.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]domain.User)}
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copy := user
			return &copy, nil
		}
	}
	return nil, ports.ErrUserNotFound
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}
