package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/store"
	"github.com/example/bazaar/internal/utils"
)

// OrderNotifier is told about every placed order. Failures are logged only.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

// invalidator is implemented by product repositories that cache reads.
type invalidator interface {
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

// OrderService turns carts into orders.
type OrderService struct {
	orders   *store.OrderStore
	carts    *store.CartStore
	products store.ProductRepository
	notifier OrderNotifier
	now      func() time.Time
}

func NewOrderService(orders *store.OrderStore, carts *store.CartStore, products store.ProductRepository, notifier OrderNotifier) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceOrder checks out the user's cart at current prices. On success stock
// is reduced by the ordered quantities and the ordered cart items are gone.
// Items added to the cart while checkout runs stay in the cart.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		UserID:   userID,
		Status:   models.OrderStatusPlaced,
		PlacedAt: s.now(),
		Subtotal: decimal.Zero,
		Items:    make([]models.OrderItem, 0, len(items)),
	}
	lines := make(map[uuid.UUID]models.CartItem, len(items))
	productIDs := make([]uuid.UUID, 0, len(items))
	cartItemIDs := make([]uuid.UUID, 0, len(items))

	for _, item := range items {
		lines[item.ProductID] = item
		productIDs = append(productIDs, item.ProductID)
		cartItemIDs = append(cartItemIDs, item.ID)

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &OutOfStockError{ProductID: item.ProductID, Title: item.Title, Requested: item.Quantity}
			}
			return nil, err
		}
		if product.TotalQuantity < item.Quantity {
			return nil, &OutOfStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: item.Quantity,
				Available: product.TotalQuantity,
			}
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		order.Subtotal = order.Subtotal.Add(lineTotal)
	}

	if err := s.orders.Place(ctx, order, cartItemIDs); err != nil {
		var stockErr *store.InsufficientStockError
		if errors.As(err, &stockErr) {
			line := lines[stockErr.ProductID]
			return nil, &OutOfStockError{
				ProductID: stockErr.ProductID,
				Title:     line.Title,
				Requested: line.Quantity,
				Available: stockErr.Available,
			}
		}
		return nil, err
	}

	if cache, ok := s.products.(invalidator); ok {
		cache.Invalidate(ctx, productIDs...)
	}

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			log.Printf("[Order] notify %s: %v", order.ID, err)
		}
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page utils.Pagination) ([]models.Order, int64, error) {
	return s.orders.ListByUser(ctx, userID, page.Offset, page.Limit)
}

func (s *OrderService) GetOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return order, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, page utils.Pagination) ([]models.Order, int64, error) {
	return s.orders.ListAll(ctx, page.Offset, page.Limit)
}
