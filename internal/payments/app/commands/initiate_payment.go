package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	ordersports "github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

var (
	// ErrInvalidOrderState is returned when the order is not awaiting payment.
	ErrInvalidOrderState = errors.New("order is not pending payment")
	// ErrAmountMismatch is returned when the submitted amount does not equal
	// the order total.
	ErrAmountMismatch = errors.New("amount mismatch")
	// ErrGateway wraps payment provider failures. The attempt is still
	// recorded as a failed payment row.
	ErrGateway = errors.New("payment gateway error")
)

type InitiatePaymentCommand struct {
	OrderID int64
	Amount  int64
	Phone   string
	Email   string
	Method  domain.Method
}

func (c InitiatePaymentCommand) Validate() error {
	if c.OrderID <= 0 {
		return errors.New("order_id is required")
	}
	if c.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return errors.New("phone is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email is required")
	}
	if !c.Method.Valid() {
		return errors.New("invalid payment method")
	}
	return nil
}

// InitiatePaymentResult is returned to the payer on a successful initiation.
type InitiatePaymentResult struct {
	Payment    domain.Payment
	PaymentURL string
	APIRef     string
	Message    string
}

type InitiateHandler interface {
	Handle(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error)
}

type InitiatePaymentCommandHandler struct {
	orders      ordersports.OrderRepository
	repo        ports.Repository
	gateway     ports.Gateway
	currency    string
	redirectURL string
}

func NewInitiatePaymentCommandHandler(
	orders ordersports.OrderRepository,
	repo ports.Repository,
	gateway ports.Gateway,
	currency string,
	redirectURL string,
) *InitiatePaymentCommandHandler {
	return &InitiatePaymentCommandHandler{
		orders:      orders,
		repo:        repo,
		gateway:     gateway,
		currency:    currency,
		redirectURL: redirectURL,
	}
}

// Handle verifies the order is payable, asks the gateway to open a payment
// and records the attempt. Every call that reaches the gateway step writes
// exactly one payment row, success or failure. On gateway failure the order
// stays pending so the customer can retry.
func (h *InitiatePaymentCommandHandler) Handle(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order, err := h.orders.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != ordersdomain.StatusPending {
		return nil, ErrInvalidOrderState
	}
	if order.TotalPrice != cmd.Amount {
		return nil, ErrAmountMismatch
	}

	// Process-unique reference; uniqueness, not secrecy, is the requirement.
	apiRef := fmt.Sprintf("KCP-%d-%d", cmd.OrderID, time.Now().UnixMilli())

	req := ports.InitiateRequest{
		Method:      cmd.Method,
		Amount:      cmd.Amount,
		Currency:    h.currency,
		Email:       cmd.Email,
		Phone:       cleanPhone(cmd.Phone),
		Reference:   apiRef,
		RedirectURL: fmt.Sprintf("%s/order-status/%d", h.redirectURL, cmd.OrderID),
		Comment:     fmt.Sprintf("Payment for CeraMaji Water Filter - Order #%d", cmd.OrderID),
	}

	resp, gwErr := h.gateway.Initiate(ctx, req)
	now := time.Now().UTC()

	if gwErr != nil {
		// No gateway id exists, so the local reference correlates the
		// failed attempt.
		attempt := domain.Payment{
			OrderID:        cmd.OrderID,
			Amount:         cmd.Amount,
			Method:         cmd.Method,
			Status:         domain.StatusFailed,
			TransactionRef: apiRef,
			CreatedAt:      now,
		}
		if err := h.repo.Create(ctx, &attempt); err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrGateway, gwErr)
	}

	payment := domain.Payment{
		OrderID:        cmd.OrderID,
		Amount:         cmd.Amount,
		Method:         cmd.Method,
		Status:         domain.StatusPending,
		TransactionRef: resp.InvoiceID,
		CreatedAt:      now,
	}
	if err := h.repo.CreateAndMarkOrder(ctx, &payment, ordersdomain.StatusPaymentInitiated); err != nil {
		return nil, err
	}

	message := "Redirecting to payment gateway."
	if cmd.Method == domain.MethodMobileMoney {
		message = "M-Pesa payment initiated. Check your phone."
	}

	return &InitiatePaymentResult{
		Payment:    payment,
		PaymentURL: resp.PaymentURL,
		APIRef:     apiRef,
		Message:    message,
	}, nil
}

// cleanPhone strips whitespace and a leading plus before the number goes to
// the gateway.
func cleanPhone(phone string) string {
	cleaned := strings.Join(strings.Fields(phone), "")
	return strings.TrimPrefix(cleaned, "+")
}
