package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending          OrderStatus = "pending"
	StatusPaymentInitiated OrderStatus = "payment_initiated"
	StatusConfirmed        OrderStatus = "confirmed"
	StatusShipped          OrderStatus = "shipped"
	StatusDelivered        OrderStatus = "delivered"
	StatusCancelled        OrderStatus = "cancelled"
)

// Valid reports whether the status is a member of the order status enum.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaymentInitiated, StatusConfirmed,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Order represents a purchase of a single product by a customer.
// TotalPrice is fixed at creation (unit price times quantity, whole KES)
// and never changes afterwards.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	ProductID  int64       `json:"product_id"`
	Quantity   int         `json:"quantity"`
	TotalPrice int64       `json:"total_price"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if o.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if o.ProductID <= 0 {
		return errors.New("product_id is required")
	}
	if o.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if o.TotalPrice <= 0 {
		return errors.New("total_price must be positive")
	}
	if !o.Status.Valid() {
		return errors.New("invalid order status")
	}
	return nil
}

// User is a customer identified by email. Customers are created implicitly
// on their first order.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields collected by the order form.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("email must be valid")
	}
	if strings.TrimSpace(u.Phone) == "" {
		return errors.New("phone is required")
	}
	if strings.TrimSpace(u.Address) == "" {
		return errors.New("address is required")
	}
	return nil
}

// Product is a catalog entry. The catalog is seeded by migrations and
// read-only at runtime. Price is in whole KES.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
