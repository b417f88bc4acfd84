package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/notify"
	ordersmemory "github.com/john-jeavons/kenya-ceramic-project/internal/orders/adapters/memory"
	ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	paymentshttp "github.com/john-jeavons/kenya-ceramic-project/internal/payments/adapters/http"
	paymentsmemory "github.com/john-jeavons/kenya-ceramic-project/internal/payments/adapters/memory"
	paymentsapp "github.com/john-jeavons/kenya-ceramic-project/internal/payments/app"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	paymentsmetrics "github.com/john-jeavons/kenya-ceramic-project/internal/payments/metrics"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
	"go.opentelemetry.io/otel"
)

type mockGateway struct {
	initiateFn    func(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResponse, error)
	checkStatusFn func(ctx context.Context, invoiceID string) (*ports.StatusResponse, error)
}

func (m *mockGateway) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResponse, error) {
	if m.initiateFn != nil {
		return m.initiateFn(ctx, req)
	}
	return &ports.InitiateResponse{InvoiceID: "INV-1", PaymentURL: "https://pay.example/INV-1"}, nil
}

func (m *mockGateway) CheckStatus(ctx context.Context, invoiceID string) (*ports.StatusResponse, error) {
	if m.checkStatusFn != nil {
		return m.checkStatusFn(ctx, invoiceID)
	}
	return &ports.StatusResponse{InvoiceID: invoiceID, State: domain.GatewayPending}, nil
}

type fixture struct {
	mux      *http.ServeMux
	orders   *ordersmemory.Repository
	payments *paymentsmemory.Repository
}

func newFixture(t *testing.T, gateway ports.Gateway) *fixture {
	t.Helper()

	orders := ordersmemory.NewRepository()
	orders.Put(ordersdomain.Order{
		ID:         42,
		UserID:     1,
		ProductID:  1,
		Quantity:   1,
		TotalPrice: 2500,
		Status:     ordersdomain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	})
	payments := paymentsmemory.NewRepository(orders)

	metrics, err := paymentsmetrics.NewMetrics(otel.Meter("test"))
	if err != nil {
		t.Fatalf("create metrics: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := paymentsapp.NewService(orders, payments, gateway, notify.NewNoopNotifier(), logger, metrics, paymentsapp.Options{
		Currency:    "KES",
		RedirectURL: "http://localhost:3000",
	})

	mux := http.NewServeMux()
	paymentshttp.NewHandler(service).Register(mux)

	return &fixture{mux: mux, orders: orders, payments: payments}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestInitiatePaymentEndpoint(t *testing.T) {
	t.Run("returns payment details on success", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodPost, "/v1/payments",
			`{"order_id":42,"amount":2500,"phone":"+254712345678","email":"amina@example.com","method":"mobile-money"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Error("expected success true")
		}
		if body["payment_id"] != "INV-1" {
			t.Errorf("expected payment_id INV-1, got %v", body["payment_id"])
		}

		order, err := f.orders.GetByID(context.Background(), 42)
		if err != nil {
			t.Fatalf("load order: %v", err)
		}
		if order.Status != ordersdomain.StatusPaymentInitiated {
			t.Errorf("expected order payment_initiated, got %s", order.Status)
		}
	})

	t.Run("returns 404 for unknown order", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodPost, "/v1/payments",
			`{"order_id":99,"amount":2500,"phone":"+254712345678","email":"amina@example.com","method":"card"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 400 for amount mismatch", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodPost, "/v1/payments",
			`{"order_id":42,"amount":100,"phone":"+254712345678","email":"amina@example.com","method":"card"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 502 when the gateway fails", func(t *testing.T) {
		gateway := &mockGateway{
			initiateFn: func(_ context.Context, _ ports.InitiateRequest) (*ports.InitiateResponse, error) {
				return nil, errors.New("provider down")
			},
		}
		f := newFixture(t, gateway)

		rec := f.do(t, http.MethodPost, "/v1/payments",
			`{"order_id":42,"amount":2500,"phone":"+254712345678","email":"amina@example.com","method":"card"}`)

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}

		order, err := f.orders.GetByID(context.Background(), 42)
		if err != nil {
			t.Fatalf("load order: %v", err)
		}
		if order.Status != ordersdomain.StatusPending {
			t.Errorf("expected order to stay pending, got %s", order.Status)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodPost, "/v1/payments", `{"order_id":`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestWebhookEndpoint(t *testing.T) {
	t.Run("applies gateway completion", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})
		seedWebhookPayment(t, f, "INV-1")

		rec := f.do(t, http.MethodPost, "/v1/payments/webhook",
			`{"invoice_id":"INV-1","state":"COMPLETE","api_ref":"KCP-42-1"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		stored, err := f.payments.GetByTransactionRef(context.Background(), "INV-1")
		if err != nil {
			t.Fatalf("load payment: %v", err)
		}
		if stored.Payment.Status != domain.StatusCompleted {
			t.Errorf("expected completed payment, got %s", stored.Payment.Status)
		}
		if stored.OrderStatus != ordersdomain.StatusConfirmed {
			t.Errorf("expected confirmed order, got %s", stored.OrderStatus)
		}
	})

	t.Run("rejects payload without required fields", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodPost, "/v1/payments/webhook", `{"api_ref":"KCP-42-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for unknown invoice", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodPost, "/v1/payments/webhook",
			`{"invoice_id":"INV-MISSING","state":"COMPLETE"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestPaymentStatusEndpoint(t *testing.T) {
	t.Run("returns the reconciled record", func(t *testing.T) {
		gateway := &mockGateway{
			checkStatusFn: func(_ context.Context, invoiceID string) (*ports.StatusResponse, error) {
				return &ports.StatusResponse{InvoiceID: invoiceID, State: domain.GatewayComplete}, nil
			},
		}
		f := newFixture(t, gateway)
		seedWebhookPayment(t, f, "INV-1")

		rec := f.do(t, http.MethodGet, "/v1/payments/INV-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		payment, ok := body["payment"].(map[string]any)
		if !ok {
			t.Fatalf("expected payment object, got %v", body)
		}
		if payment["status"] != "completed" {
			t.Errorf("expected completed status, got %v", payment["status"])
		}
		if payment["order_status"] != "confirmed" {
			t.Errorf("expected confirmed order, got %v", payment["order_status"])
		}
	})

	t.Run("returns 404 for unknown ref", func(t *testing.T) {
		f := newFixture(t, &mockGateway{})

		rec := f.do(t, http.MethodGet, "/v1/payments/INV-MISSING", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func seedWebhookPayment(t *testing.T, f *fixture, ref string) {
	t.Helper()

	payment := domain.Payment{
		OrderID:        42,
		Amount:         2500,
		Method:         domain.MethodMobileMoney,
		Status:         domain.StatusPending,
		TransactionRef: ref,
		CreatedAt:      time.Now().UTC(),
	}
	if err := f.payments.CreateAndMarkOrder(context.Background(), &payment, ordersdomain.StatusPaymentInitiated); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}
