package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/store"
)

type countingRepo struct {
	products map[uuid.UUID]models.Product
	gets     int
	lists    int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{products: map[uuid.UUID]models.Product{}}
}

func (r *countingRepo) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	r.lists++
	var out []models.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *countingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.gets++
	p, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r *countingRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = *product
	return nil
}

func (r *countingRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if qty, ok := fields["total_quantity"].(int); ok {
		p.TotalQuantity = qty
	}
	if title, ok := fields["title"].(string); ok {
		p.Title = title
	}
	r.products[id] = p
	return &p, nil
}

func (r *countingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func newCached(t *testing.T) (*CachedProductRepository, *countingRepo) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newCountingRepo()
	return NewCachedProductRepository(repo, client, time.Minute), repo
}

func TestCachedGetByIDServesFromCache(t *testing.T) {
	ctx := context.Background()
	cached, repo := newCached(t)

	product := &models.Product{Title: "Shirt", Price: decimal.NewFromInt(499), TotalQuantity: 10}
	if err := cached.Create(ctx, product); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := cached.GetByID(ctx, product.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != "Shirt" || !got.Price.Equal(product.Price) {
			t.Fatalf("unexpected product %+v", got)
		}
	}
	if repo.gets != 1 {
		t.Fatalf("expected one backing read, got %d", repo.gets)
	}

	if _, err := cached.Update(ctx, product.ID, map[string]interface{}{"total_quantity": 4}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := cached.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalQuantity != 4 {
		t.Fatalf("stale product after update: %+v", got)
	}
}

func TestCachedGetByIDRemembersMisses(t *testing.T) {
	ctx := context.Background()
	cached, repo := newCached(t)
	id := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := cached.GetByID(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if repo.gets != 1 {
		t.Fatalf("expected one backing read, got %d", repo.gets)
	}
}

func TestCachedListInvalidation(t *testing.T) {
	ctx := context.Background()
	cached, repo := newCached(t)
	filter := store.ProductFilter{Limit: 20}

	if err := cached.Create(ctx, &models.Product{Title: "Mug"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, _, err := cached.List(ctx, filter); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if repo.lists != 1 {
		t.Fatalf("expected one backing list, got %d", repo.lists)
	}

	cached.Invalidate(ctx)
	_, total, err := cached.List(ctx, filter)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lists != 2 || total != 1 {
		t.Fatalf("expected a fresh read after invalidation, lists=%d total=%d", repo.lists, total)
	}
}
