package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/observability"
)

const (
	productListKey  = "catalog:products:all"
	productKeyFmt   = "catalog:products:%d"
	categoryListKey = "catalog:categories:all"
)

// CatalogCache is a read-through JSON cache for public catalog reads.
// A nil *CatalogCache is valid and always misses.
type CatalogCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewCatalogCache returns a cache backed by client. Entries expire after ttl.
func NewCatalogCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *CatalogCache {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{client: client, ttl: ttl, logger: logger, metrics: metrics}
}

func productKey(id int64) string {
	return fmt.Sprintf(productKeyFmt, id)
}

// Products returns the cached product list.
func (c *CatalogCache) Products(ctx context.Context) ([]domain.Product, bool) {
	var products []domain.Product
	ok := c.get(ctx, "products", productListKey, &products)
	return products, ok
}

// SetProducts caches the product list.
func (c *CatalogCache) SetProducts(ctx context.Context, products []domain.Product) {
	c.set(ctx, productListKey, products)
}

// Product returns a cached product by id.
func (c *CatalogCache) Product(ctx context.Context, id int64) (*domain.Product, bool) {
	var product domain.Product
	if !c.get(ctx, "product", productKey(id), &product) {
		return nil, false
	}
	return &product, true
}

// SetProduct caches one product.
func (c *CatalogCache) SetProduct(ctx context.Context, product *domain.Product) {
	if product == nil {
		return
	}
	c.set(ctx, productKey(product.ID), product)
}

// Categories returns the cached category list.
func (c *CatalogCache) Categories(ctx context.Context) ([]domain.Category, bool) {
	var categories []domain.Category
	ok := c.get(ctx, "categories", categoryListKey, &categories)
	return categories, ok
}

// SetCategories caches the category list.
func (c *CatalogCache) SetCategories(ctx context.Context, categories []domain.Category) {
	c.set(ctx, categoryListKey, categories)
}

// InvalidateProducts drops the product list and the given product entries.
func (c *CatalogCache) InvalidateProducts(ctx context.Context, ids ...int64) {
	keys := []string{productListKey}
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	c.del(ctx, keys...)
}

// InvalidateCategories drops the category list. Products embed their category, so
// every cached product entry is dropped as well.
func (c *CatalogCache) InvalidateCategories(ctx context.Context) {
	if c == nil {
		return
	}
	keys := []string{categoryListKey, productListKey}
	iter := c.client.Scan(ctx, 0, "catalog:products:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", zap.Error(err))
	}
	c.del(ctx, keys...)
}

func (c *CatalogCache) get(ctx context.Context, name, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.metrics.RecordCache(name, false)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		c.metrics.RecordCache(name, false)
		return false
	}
	c.metrics.RecordCache(name, true)
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CatalogCache) del(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
