package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/store"
)

const (
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
	listGeneration = "products:list:gen"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// CachedProductRepository serves catalog reads from Redis and falls through to
// the wrapped repository on a miss or a Redis failure.
type CachedProductRepository struct {
	next  store.ProductRepository
	redis *redis.Client
	ttl   time.Duration
}

var _ store.ProductRepository = (*CachedProductRepository)(nil)

func NewCachedProductRepository(next store.ProductRepository, client *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{next: next, redis: client, ttl: ttl}
}

func productKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, store.ErrNotFound
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		log.Printf("[Cache] corrupt entry %s, reading through", key)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("[Cache] redis get %s: %v", key, err)
	}

	product, err := c.next.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				log.Printf("[Cache] redis set %s: %v", key, setErr)
			}
		}
		return nil, err
	}

	c.put(ctx, key, product)
	return product, nil
}

type cachedPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func (c *CachedProductRepository) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	gen, err := c.redis.Get(ctx, listGeneration).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[Cache] redis get %s: %v", listGeneration, err)
		return c.next.List(ctx, filter)
	}

	key := fmt.Sprintf("products:list:%d:%s:%s:%d:%d", gen, filter.Category, filter.Search, filter.Offset, filter.Limit)
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var page cachedPage
		if err := json.Unmarshal(data, &page); err == nil {
			return page.Products, page.Total, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[Cache] redis get %s: %v", key, err)
	}

	products, total, err := c.next.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	c.put(ctx, key, cachedPage{Products: products, Total: total})
	return products, total, nil
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.next.Create(ctx, product); err != nil {
		return err
	}
	c.Invalidate(ctx, product.ID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error) {
	product, err := c.next.Update(ctx, id, fields)
	c.Invalidate(ctx, id)
	return product, err
}

func (c *CachedProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.next.Delete(ctx, id)
	c.Invalidate(ctx, id)
	return err
}

// Invalidate drops cached copies of the given products and every cached listing.
// Stock changes made outside this repository must call it.
func (c *CachedProductRepository) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, productKey(id))
		}
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			log.Printf("[Cache] redis del: %v", err)
		}
	}
	if err := c.redis.Incr(ctx, listGeneration).Err(); err != nil {
		log.Printf("[Cache] redis incr %s: %v", listGeneration, err)
	}
}

func (c *CachedProductRepository) put(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] marshal %s: %v", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[Cache] redis set %s: %v", key, err)
	}
}
