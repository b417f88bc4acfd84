package domain

import (
	"errors"
	"time"
)

// Status captures the lifecycle of a payment attempt. Completed and failed
// are terminal: the reconciler never transitions out of them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Method selects the gateway endpoint the payment is routed through.
type Method string

const (
	MethodMobileMoney Method = "mobile-money"
	MethodCard        Method = "card"
)

// Valid reports whether the method is supported.
func (m Method) Valid() bool {
	return m == MethodMobileMoney || m == MethodCard
}

// Payment is one attempt to pay for an order. An order may accumulate
// several attempts (a failed one followed by a retry); each attempt is its
// own row and forms the audit trail. TransactionRef is the gateway invoice
// id, or the locally generated reference when the gateway call itself
// failed, and is the sole external correlation key.
type Payment struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"order_id"`
	Amount         int64     `json:"amount"`
	Method         Method    `json:"method"`
	Status         Status    `json:"status"`
	TransactionRef string    `json:"transaction_ref"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate ensures the payment adheres to business constraints.
func (p Payment) Validate() error {
	if p.OrderID <= 0 {
		return errors.New("order_id is required")
	}
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if !p.Method.Valid() {
		return errors.New("invalid payment method")
	}
	if p.TransactionRef == "" {
		return errors.New("transaction_ref is required")
	}
	return nil
}
