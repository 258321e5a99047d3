package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Search   string
	Offset   int
	Limit    int
}

// ProductRepository is the catalog persistence contract. It is satisfied by
// ProductStore and by the Redis-backed decorator in package cache.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
