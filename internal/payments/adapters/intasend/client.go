// Package intasend implements the payment gateway port against the
// IntaSend collections API (https://developers.intasend.com/).
package intasend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

const (
	mpesaPath  = "/payment/mpesa-stk-push/"
	cardPath   = "/payment/card-payment/"
	statusPath = "/payment/status/"

	defaultTimeout = 15 * time.Second
)

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

var _ ports.Gateway = (*Client)(nil)

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type paymentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	APIRef      string `json:"api_ref"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	APIRef string `json:"api_ref"`
	State  string `json:"state"`
}

type statusRequest struct {
	InvoiceID string `json:"invoice_id"`
}

type statusResponse struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	APIRef       string `json:"api_ref"`
	FailedReason string `json:"failed_reason"`
	FailedCode   string `json:"failed_code"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Initiate opens a payment with the endpoint matching the method: mobile
// money routes to the M-Pesa STK push, card to the card checkout. This is
// the single method dispatch point in the system.
func (c *Client) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResponse, error) {
	path := cardPath
	if req.Method == domain.MethodMobileMoney {
		path = mpesaPath
	}

	body := paymentRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Email:       req.Email,
		PhoneNumber: req.Phone,
		APIRef:      req.Reference,
		RedirectURL: req.RedirectURL,
		Comment:     req.Comment,
	}

	var resp paymentResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("intasend: response missing invoice id")
	}

	return &ports.InitiateResponse{
		InvoiceID:  resp.ID,
		PaymentURL: resp.URL,
	}, nil
}

// CheckStatus queries the gateway for the current state of an invoice.
func (c *Client) CheckStatus(ctx context.Context, invoiceID string) (*ports.StatusResponse, error) {
	var resp statusResponse
	if err := c.post(ctx, statusPath, statusRequest{InvoiceID: invoiceID}, &resp); err != nil {
		return nil, err
	}

	return &ports.StatusResponse{
		InvoiceID:    resp.ID,
		State:        domain.GatewayState(resp.State),
		FailedReason: resp.FailedReason,
		FailedCode:   resp.FailedCode,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("intasend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("intasend: %s", apiErr.Detail)
		}
		return fmt.Errorf("intasend: unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
