package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/john-jeavons/kenya-ceramic-project/internal/database"
	ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	ordersports "github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/payments/ports"
)

type Repository struct {
	pool    *pgxpool.Pool
	metrics *database.Metrics
}

func NewRepository(pool *pgxpool.Pool, metrics *database.Metrics) *Repository {
	return &Repository{pool: pool, metrics: metrics}
}

func (r *Repository) Create(ctx context.Context, payment *domain.Payment) error {
	defer r.metrics.Observe(ctx, "insert_payment", time.Now())

	query := `
		INSERT INTO payments (order_id, amount, method, status, transaction_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		payment.OrderID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionRef,
		payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// CreateAndMarkOrder inserts the payment and moves its order to the given
// status inside one transaction, so a crash cannot leave an initiated
// payment against an order still marked pending.
func (r *Repository) CreateAndMarkOrder(ctx context.Context, payment *domain.Payment, status ordersdomain.OrderStatus) error {
	defer r.metrics.Observe(ctx, "insert_payment_mark_order", time.Now())

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO payments (order_id, amount, method, status, transaction_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err = tx.QueryRow(ctx, query,
		payment.OrderID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionRef,
		payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	result, err := tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, payment.OrderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ordersports.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (r *Repository) GetByTransactionRef(ctx context.Context, ref string) (*ports.Record, error) {
	defer r.metrics.Observe(ctx, "get_payment_by_ref", time.Now())

	query := `
		SELECT p.id, p.order_id, p.amount, p.method, p.status, p.transaction_ref, p.created_at, o.status
		FROM payments p
		JOIN orders o ON p.order_id = o.id
		WHERE p.transaction_ref = $1
	`

	var rec ports.Record
	err := r.pool.QueryRow(ctx, query, ref).Scan(
		&rec.Payment.ID,
		&rec.Payment.OrderID,
		&rec.Payment.Amount,
		&rec.Payment.Method,
		&rec.Payment.Status,
		&rec.Payment.TransactionRef,
		&rec.Payment.CreatedAt,
		&rec.OrderStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select payment: %w", err)
	}

	return &rec, nil
}

// ApplyTransition writes the payment and order statuses as a single unit:
// both updates commit or neither does.
func (r *Repository) ApplyTransition(ctx context.Context, paymentID, orderID int64, t domain.Transition) error {
	defer r.metrics.Observe(ctx, "apply_transition", time.Now())

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, t.Payment, paymentID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	result, err = tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, t.Order, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ordersports.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
