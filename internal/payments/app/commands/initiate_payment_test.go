package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	ordersports "github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/app/commands"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

type mockOrderRepository struct {
	getByIDFn func(ctx context.Context, id int64) (*ordersdomain.Order, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, order *ordersdomain.Order) error {
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*ordersdomain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ordersports.ErrNotFound
}

func (m *mockOrderRepository) List(ctx context.Context) ([]ordersdomain.Summary, error) {
	return nil, nil
}

func (m *mockOrderRepository) GetDetail(ctx context.Context, id int64) (*ordersdomain.Detail, error) {
	return nil, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status ordersdomain.OrderStatus) error {
	return nil
}

func (m *mockOrderRepository) Stats(ctx context.Context) (*ordersdomain.Stats, error) {
	return nil, nil
}

type mockPaymentRepository struct {
	created           []domain.Payment
	markedOrderStatus ordersdomain.OrderStatus
	createFn          func(ctx context.Context, payment *domain.Payment) error
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, payment); err != nil {
			return err
		}
	}
	payment.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *payment)
	return nil
}

func (m *mockPaymentRepository) CreateAndMarkOrder(ctx context.Context, payment *domain.Payment, status ordersdomain.OrderStatus) error {
	m.markedOrderStatus = status
	return m.Create(ctx, payment)
}

func (m *mockPaymentRepository) GetByTransactionRef(ctx context.Context, ref string) (*ports.Record, error) {
	return nil, ports.ErrNotFound
}

func (m *mockPaymentRepository) ApplyTransition(ctx context.Context, paymentID, orderID int64, t domain.Transition) error {
	return nil
}

type mockGateway struct {
	initiateFn    func(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResponse, error)
	checkStatusFn func(ctx context.Context, invoiceID string) (*ports.StatusResponse, error)
	lastRequest   ports.InitiateRequest
}

func (m *mockGateway) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResponse, error) {
	m.lastRequest = req
	if m.initiateFn != nil {
		return m.initiateFn(ctx, req)
	}
	return &ports.InitiateResponse{InvoiceID: "INV-1", PaymentURL: "https://pay.example/INV-1"}, nil
}

func (m *mockGateway) CheckStatus(ctx context.Context, invoiceID string) (*ports.StatusResponse, error) {
	if m.checkStatusFn != nil {
		return m.checkStatusFn(ctx, invoiceID)
	}
	return nil, errors.New("not implemented")
}

func pendingOrder() *ordersdomain.Order {
	return &ordersdomain.Order{
		ID:         42,
		UserID:     1,
		ProductID:  1,
		Quantity:   1,
		TotalPrice: 2500,
		Status:     ordersdomain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func validCommand() commands.InitiatePaymentCommand {
	return commands.InitiatePaymentCommand{
		OrderID: 42,
		Amount:  2500,
		Phone:   "+254 712 345678",
		Email:   "amina@example.com",
		Method:  domain.MethodMobileMoney,
	}
}

func TestInitiatePayment(t *testing.T) {
	t.Run("opens payment and marks order", func(t *testing.T) {
		orders := &mockOrderRepository{
			getByIDFn: func(_ context.Context, _ int64) (*ordersdomain.Order, error) {
				return pendingOrder(), nil
			},
		}
		repo := &mockPaymentRepository{}
		gateway := &mockGateway{}
		handler := commands.NewInitiatePaymentCommandHandler(orders, repo, gateway, "KES", "http://localhost:3000")

		result, err := handler.Handle(context.Background(), validCommand())

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if result.Payment.TransactionRef != "INV-1" {
			t.Errorf("expected transaction ref INV-1, got %s", result.Payment.TransactionRef)
		}
		if result.Payment.Status != domain.StatusPending {
			t.Errorf("expected pending payment, got %s", result.Payment.Status)
		}
		if repo.markedOrderStatus != ordersdomain.StatusPaymentInitiated {
			t.Errorf("expected order marked payment_initiated, got %s", repo.markedOrderStatus)
		}
		if result.Message != "M-Pesa payment initiated. Check your phone." {
			t.Errorf("unexpected message: %s", result.Message)
		}
		if !strings.HasPrefix(result.APIRef, "KCP-42-") {
			t.Errorf("expected api ref prefixed KCP-42-, got %s", result.APIRef)
		}
	})

	t.Run("cleans phone number before the gateway call", func(t *testing.T) {
		orders := &mockOrderRepository{
			getByIDFn: func(_ context.Context, _ int64) (*ordersdomain.Order, error) {
				return pendingOrder(), nil
			},
		}
		repo := &mockPaymentRepository{}
		gateway := &mockGateway{}
		handler := commands.NewInitiatePaymentCommandHandler(orders, repo, gateway, "KES", "http://localhost:3000")

		if _, err := handler.Handle(context.Background(), validCommand()); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if gateway.lastRequest.Phone != "254712345678" {
			t.Errorf("expected cleaned phone 254712345678, got %s", gateway.lastRequest.Phone)
		}
		if gateway.lastRequest.Currency != "KES" {
			t.Errorf("expected currency KES, got %s", gateway.lastRequest.Currency)
		}
	})

	t.Run("returns not found for missing order", func(t *testing.T) {
		orders := &mockOrderRepository{}
		repo := &mockPaymentRepository{}
		handler := commands.NewInitiatePaymentCommandHandler(orders, repo, &mockGateway{}, "KES", "http://localhost:3000")

		_, err := handler.Handle(context.Background(), validCommand())

		if !errors.Is(err, ordersports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
		if len(repo.created) != 0 {
			t.Errorf("expected no payment rows, got %d", len(repo.created))
		}
	})

	t.Run("rejects order that is not pending", func(t *testing.T) {
		orders := &mockOrderRepository{
			getByIDFn: func(_ context.Context, _ int64) (*ordersdomain.Order, error) {
				order := pendingOrder()
				order.Status = ordersdomain.StatusConfirmed
				return order, nil
			},
		}
		repo := &mockPaymentRepository{}
		handler := commands.NewInitiatePaymentCommandHandler(orders, repo, &mockGateway{}, "KES", "http://localhost:3000")

		_, err := handler.Handle(context.Background(), validCommand())

		if !errors.Is(err, commands.ErrInvalidOrderState) {
			t.Fatalf("expected ErrInvalidOrderState, got: %v", err)
		}
		if len(repo.created) != 0 {
			t.Errorf("expected no payment rows, got %d", len(repo.created))
		}
	})

	t.Run("rejects amount that does not match the order total", func(t *testing.T) {
		orders := &mockOrderRepository{
			getByIDFn: func(_ context.Context, _ int64) (*ordersdomain.Order, error) {
				return pendingOrder(), nil
			},
		}
		repo := &mockPaymentRepository{}
		handler := commands.NewInitiatePaymentCommandHandler(orders, repo, &mockGateway{}, "KES", "http://localhost:3000")

		cmd := validCommand()
		cmd.Amount = 100

		_, err := handler.Handle(context.Background(), cmd)

		if !errors.Is(err, commands.ErrAmountMismatch) {
			t.Fatalf("expected ErrAmountMismatch, got: %v", err)
		}
		if len(repo.created) != 0 {
			t.Errorf("expected no payment rows, got %d", len(repo.created))
		}
	})

	t.Run("records failed attempt when the gateway errors", func(t *testing.T) {
		orders := &mockOrderRepository{
			getByIDFn: func(_ context.Context, _ int64) (*ordersdomain.Order, error) {
				return pendingOrder(), nil
			},
		}
		repo := &mockPaymentRepository{}
		gateway := &mockGateway{
			initiateFn: func(_ context.Context, _ ports.InitiateRequest) (*ports.InitiateResponse, error) {
				return nil, errors.New("insufficient float")
			},
		}
		handler := commands.NewInitiatePaymentCommandHandler(orders, repo, gateway, "KES", "http://localhost:3000")

		_, err := handler.Handle(context.Background(), validCommand())

		if !errors.Is(err, commands.ErrGateway) {
			t.Fatalf("expected ErrGateway, got: %v", err)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected one failed payment row, got %d", len(repo.created))
		}

		attempt := repo.created[0]
		if attempt.Status != domain.StatusFailed {
			t.Errorf("expected failed attempt, got %s", attempt.Status)
		}
		if !strings.HasPrefix(attempt.TransactionRef, "KCP-42-") {
			t.Errorf("expected local reference on failed attempt, got %s", attempt.TransactionRef)
		}
		if repo.markedOrderStatus != "" {
			t.Errorf("expected order untouched, got status %s", repo.markedOrderStatus)
		}
	})

	t.Run("rejects invalid command without touching storage", func(t *testing.T) {
		repo := &mockPaymentRepository{}
		handler := commands.NewInitiatePaymentCommandHandler(&mockOrderRepository{}, repo, &mockGateway{}, "KES", "http://localhost:3000")

		cmd := validCommand()
		cmd.Method = "cheque"

		if _, err := handler.Handle(context.Background(), cmd); err == nil {
			t.Fatal("expected error, got nil")
		}
		if len(repo.created) != 0 {
			t.Errorf("expected no payment rows, got %d", len(repo.created))
		}
	})
}
