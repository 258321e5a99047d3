package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/store"
)

// CartService keeps per-user cart lines consistent with product stock.
type CartService struct {
	carts    *store.CartStore
	products store.ProductRepository
}

func NewCartService(carts *store.CartStore, products store.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.carts.ListByUser(ctx, userID)
}

// AddItem puts qty units of a product in the cart, merging with an existing
// line for the same product. The merged quantity may not exceed stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	existing, err := s.carts.GetByProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		total := existing.Quantity + qty
		if total > product.TotalQuantity {
			return nil, ErrInvalidQuantity
		}
		existing.Quantity = total
		snapshot(existing, product)
		if err := s.carts.Save(ctx, existing); err != nil {
			return nil, mapStoreErr(err)
		}
		return existing, nil
	}

	if qty > product.TotalQuantity {
		return nil, ErrInvalidQuantity
	}
	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	snapshot(item, product)
	if err := s.carts.Create(ctx, item); err != nil {
		return nil, mapStoreErr(err)
	}
	return item, nil
}

// UpdateItem sets the quantity of one of the user's cart lines.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, qty int) (*models.CartItem, error) {
	item, err := s.carts.GetForUser(ctx, userID, itemID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidQuantity
		}
		return nil, err
	}
	if qty > product.TotalQuantity {
		return nil, ErrInvalidQuantity
	}

	item.Quantity = qty
	snapshot(item, product)
	if err := s.carts.Save(ctx, item); err != nil {
		return nil, mapStoreErr(err)
	}
	return item, nil
}

func (s *CartService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return mapStoreErr(s.carts.DeleteForUser(ctx, userID, itemID))
}

func snapshot(item *models.CartItem, product *models.Product) {
	item.Title = product.Title
	item.Price = product.Price
	item.Images = product.Images
}
