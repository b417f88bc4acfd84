package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/john-jeavons/kenya-ceramic-project/internal/database"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
)

type Repository struct {
	pool    *pgxpool.Pool
	metrics *database.Metrics
}

func NewRepository(pool *pgxpool.Pool, metrics *database.Metrics) *Repository {
	return &Repository{pool: pool, metrics: metrics}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	defer r.metrics.Observe(ctx, "insert_order", time.Now())

	query := `
		INSERT INTO orders (user_id, product_id, quantity, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		order.UserID,
		order.ProductID,
		order.Quantity,
		order.TotalPrice,
		order.Status,
		order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	defer r.metrics.Observe(ctx, "get_order", time.Now())

	query := `
		SELECT id, user_id, product_id, quantity, total_price, status, created_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.ProductID,
		&order.Quantity,
		&order.TotalPrice,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return &order, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Summary, error) {
	defer r.metrics.Observe(ctx, "list_orders", time.Now())

	query := `
		SELECT o.id, o.quantity, o.total_price, o.status, o.created_at,
		       u.name, u.email, p.name
		FROM orders o
		JOIN users u ON o.user_id = u.id
		JOIN products p ON o.product_id = p.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var summaries []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(
			&s.ID,
			&s.Quantity,
			&s.TotalPrice,
			&s.Status,
			&s.CreatedAt,
			&s.CustomerName,
			&s.CustomerEmail,
			&s.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return summaries, nil
}

func (r *Repository) GetDetail(ctx context.Context, id int64) (*domain.Detail, error) {
	defer r.metrics.Observe(ctx, "get_order_detail", time.Now())

	// The lateral join picks the most recent payment attempt, if any.
	query := `
		SELECT o.id, o.quantity, o.total_price, o.status, o.created_at,
		       u.name, u.email, u.phone, u.address,
		       p.name, p.description, p.price,
		       COALESCE(pay.status, ''), COALESCE(pay.method, ''), COALESCE(pay.transaction_ref, '')
		FROM orders o
		JOIN users u ON o.user_id = u.id
		JOIN products p ON o.product_id = p.id
		LEFT JOIN LATERAL (
			SELECT status, method, transaction_ref
			FROM payments
			WHERE order_id = o.id
			ORDER BY created_at DESC
			LIMIT 1
		) pay ON true
		WHERE o.id = $1
	`

	var d domain.Detail
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Quantity,
		&d.TotalPrice,
		&d.Status,
		&d.CreatedAt,
		&d.CustomerName,
		&d.CustomerEmail,
		&d.CustomerPhone,
		&d.CustomerAddress,
		&d.ProductName,
		&d.ProductDescription,
		&d.ProductPrice,
		&d.PaymentStatus,
		&d.PaymentMethod,
		&d.TransactionRef,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order detail: %w", err)
	}

	return &d, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	defer r.metrics.Observe(ctx, "update_order_status", time.Now())

	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) Stats(ctx context.Context) (*domain.Stats, error) {
	defer r.metrics.Observe(ctx, "order_stats", time.Now())

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_price) FILTER (WHERE status <> 'cancelled'), 0),
			COUNT(DISTINCT user_id),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'shipped'),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now()) - interval '1 month'
				AND created_at < date_trunc('month', now()))
		FROM orders
	`

	var stats domain.Stats
	var thisMonth, lastMonth int
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalOrders,
		&stats.TotalRevenue,
		&stats.TotalCustomers,
		&stats.PendingOrders,
		&stats.ConfirmedOrders,
		&stats.ShippedOrders,
		&stats.DeliveredOrders,
		&stats.CancelledOrders,
		&thisMonth,
		&lastMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("select order stats: %w", err)
	}

	if lastMonth > 0 {
		stats.GrowthRate = (thisMonth - lastMonth) * 100 / lastMonth
	}

	return &stats, nil
}
