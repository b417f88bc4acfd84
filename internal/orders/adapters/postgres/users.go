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

type UserRepository struct {
	pool    *pgxpool.Pool
	metrics *database.Metrics
}

func NewUserRepository(pool *pgxpool.Pool, metrics *database.Metrics) *UserRepository {
	return &UserRepository{pool: pool, metrics: metrics}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.metrics.Observe(ctx, "get_user_by_email", time.Now())

	query := `
		SELECT id, name, email, phone, address, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`

	var user domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Address,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	defer r.metrics.Observe(ctx, "insert_user", time.Now())

	query := `
		INSERT INTO users (name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.Address,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}
