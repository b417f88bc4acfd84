package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	ordersports "github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/app"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/app/commands"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

// Handler exposes HTTP endpoints for payment operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the payment handlers to the provided ServeMux. The webhook
// pattern is more specific than the status prefix, so ServeMux routes it
// first.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/payments", h.handlePayments)
	mux.HandleFunc("/v1/payments/webhook", h.handleWebhook)
	mux.HandleFunc("/v1/payments/", h.handlePaymentStatus)
}

type initiateRequest struct {
	OrderID int64  `json:"order_id"`
	Amount  int64  `json:"amount"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Method  string `json:"method"`
}

type initiateResponse struct {
	Success    bool   `json:"success"`
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url,omitempty"`
	APIRef     string `json:"api_ref"`
	Message    string `json:"message"`
}

func (h *Handler) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	cmd := commands.InitiatePaymentCommand{
		OrderID: payload.OrderID,
		Amount:  payload.Amount,
		Phone:   payload.Phone,
		Email:   payload.Email,
		Method:  domain.Method(payload.Method),
	}

	result, err := h.service.InitiatePayment(r.Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, ordersports.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, commands.ErrInvalidOrderState):
			writeError(w, http.StatusBadRequest, "order is not pending payment")
		case errors.Is(err, commands.ErrAmountMismatch):
			writeError(w, http.StatusBadRequest, "amount mismatch")
		case errors.Is(err, commands.ErrGateway):
			// The attempt is recorded; the payer sees a retry prompt, not
			// the provider's raw error.
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   "payment initiation failed",
				"details": err.Error(),
			})
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, initiateResponse{
		Success:    true,
		PaymentID:  result.Payment.TransactionRef,
		PaymentURL: result.PaymentURL,
		APIRef:     result.APIRef,
		Message:    result.Message,
	})
}

type webhookRequest struct {
	InvoiceID    string `json:"invoice_id"`
	State        string `json:"state"`
	APIRef       string `json:"api_ref"`
	FailedReason string `json:"failed_reason"`
	FailedCode   string `json:"failed_code"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payload.InvoiceID == "" || payload.State == "" {
		writeError(w, http.StatusBadRequest, "missing required webhook data")
		return
	}

	cmd := commands.WebhookCommand{
		InvoiceID:    payload.InvoiceID,
		State:        payload.State,
		APIRef:       payload.APIRef,
		FailedReason: payload.FailedReason,
		FailedCode:   payload.FailedCode,
	}

	if _, err := h.service.HandleWebhook(r.Context(), cmd); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		// The gateway retries failed deliveries itself.
		writeError(w, http.StatusInternalServerError, "webhook processing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "webhook processed successfully",
	})
}

type statusResponse struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"order_id"`
	Amount         int64     `json:"amount"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	TransactionRef string    `json:"transaction_ref"`
	CreatedAt      time.Time `json:"created_at"`
	OrderStatus    string    `json:"order_status"`
}

func (h *Handler) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ref := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/payments/"), "/")
	if ref == "" {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	rec, err := h.service.PollStatus(r.Context(), ref)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check payment status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"payment": statusResponse{
		ID:             rec.Payment.ID,
		OrderID:        rec.Payment.OrderID,
		Amount:         rec.Payment.Amount,
		Method:         string(rec.Payment.Method),
		Status:         string(rec.Payment.Status),
		TransactionRef: rec.Payment.TransactionRef,
		CreatedAt:      rec.Payment.CreatedAt,
		OrderStatus:    string(rec.OrderStatus),
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
