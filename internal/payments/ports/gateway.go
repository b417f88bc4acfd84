package ports

import (
	"context"

	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
)

// InitiateRequest is the charge request sent to the gateway. Method picks
// the gateway endpoint (mobile money STK push vs card checkout); the
// dispatch happens inside the gateway adapter, nowhere else.
type InitiateRequest struct {
	Method      domain.Method
	Amount      int64
	Currency    string
	Email       string
	Phone       string
	Reference   string
	RedirectURL string
	Comment     string
}

// InitiateResponse carries the remote payment identity. InvoiceID becomes
// the payment's transaction_ref.
type InitiateResponse struct {
	InvoiceID  string
	PaymentURL string
}

// StatusResponse is the gateway's answer to a status query.
type StatusResponse struct {
	InvoiceID    string
	State        domain.GatewayState
	FailedReason string
	FailedCode   string
}

// Gateway is the external payment provider. Both calls must be bounded by
// the context deadline; a timeout is reported as an ordinary error.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	CheckStatus(ctx context.Context, invoiceID string) (*StatusResponse, error)
}

// Notifier delivers the customer-facing confirmation once a payment
// completes. Implementations must not block payment processing; failures
// are logged, never propagated.
type Notifier interface {
	PaymentCompleted(ctx context.Context, orderID int64, transactionRef string) error
}
