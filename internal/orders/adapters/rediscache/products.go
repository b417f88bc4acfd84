// Package rediscache wraps the product repository with a best-effort Redis
// cache. The catalog is seeded by migrations and effectively immutable, so
// short TTLs are enough and cache failures fall through to the database.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"
	"github.com/john-jeavons/kenya-ceramic-project/internal/orders/ports"
	"github.com/redis/go-redis/v9"
)

const (
	productKeyFormat = "product:%d"
	productListKey   = "products:all"
	cacheTTL         = 5 * time.Minute
)

// ProductRepository decorates a ports.ProductRepository with caching.
type ProductRepository struct {
	next   ports.ProductRepository
	client *redis.Client
	logger *slog.Logger
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(next ports.ProductRepository, client *redis.Client, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{next: next, client: client, logger: logger}
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := fmt.Sprintf(productKeyFormat, id)

	if cached, err := r.client.Get(ctx, key).Result(); err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}
	}

	product, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := r.client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			r.logger.WarnContext(ctx, "failed to cache product", "error", err, "product_id", id)
		}
	}

	return product, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	if cached, err := r.client.Get(ctx, productListKey).Result(); err == nil {
		var products []domain.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			return products, nil
		}
	}

	products, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := r.client.Set(ctx, productListKey, data, cacheTTL).Err(); err != nil {
			r.logger.WarnContext(ctx, "failed to cache product list", "error", err)
		}
	}

	return products, nil
}
