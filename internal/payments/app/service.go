package app

import (
	"context"
	"log/slog"

	ordersports "github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/app/commands"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/app/queries"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/metrics"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

// Options carries gateway-facing settings the reconciler embeds into
// initiation requests.
type Options struct {
	Currency    string
	RedirectURL string
}

// Service bundles the three reconciler entry points: initiation, webhook
// and status poll. Webhook and poll for the same transaction_ref are
// serialized through a per-ref lock; the transition table itself is
// idempotent, the lock only prevents a lost update between one caller's
// read and another's write.
type Service struct {
	initiateHandler commands.InitiateHandler
	webhookHandler  *commands.WebhookCommandHandler
	statusHandler   *queries.PaymentStatusQueryHandler
	metrics         *metrics.Metrics
	locks           *refLock
}

// NewService wires required dependencies.
func NewService(
	orders ordersports.OrderRepository,
	repo ports.Repository,
	gateway ports.Gateway,
	notifier ports.Notifier,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	opts Options,
) *Service {
	coreInitiate := commands.NewInitiatePaymentCommandHandler(orders, repo, gateway, opts.Currency, opts.RedirectURL)
	observableInitiate := commands.NewObservableInitiateHandler(coreInitiate, logger, metrics)

	return &Service{
		initiateHandler: observableInitiate,
		webhookHandler:  commands.NewWebhookCommandHandler(repo, notifier, logger),
		statusHandler:   queries.NewPaymentStatusQueryHandler(repo, gateway, logger),
		metrics:         metrics,
		locks:           newRefLock(),
	}
}

// InitiatePayment opens a payment attempt against a pending order.
func (s *Service) InitiatePayment(ctx context.Context, cmd commands.InitiatePaymentCommand) (*commands.InitiatePaymentResult, error) {
	return s.initiateHandler.Handle(ctx, cmd)
}

// HandleWebhook applies a pushed gateway state. Safe to replay.
func (s *Service) HandleWebhook(ctx context.Context, cmd commands.WebhookCommand) (*ports.Record, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(cmd.InvoiceID)
	defer unlock()

	rec, err := s.webhookHandler.Handle(ctx, cmd)
	if err == nil {
		s.metrics.RecordWebhook(ctx, cmd.State)
	}
	return rec, err
}

// PollStatus returns the reconciled record for a transaction_ref,
// refreshing from the gateway when the payment is still pending.
func (s *Service) PollStatus(ctx context.Context, transactionRef string) (*ports.Record, error) {
	query := queries.PaymentStatusQuery{TransactionRef: transactionRef}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(transactionRef)
	defer unlock()

	return s.statusHandler.Handle(ctx, query)
}
