package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// OrderStore persists orders and performs checkout.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Place decrements stock for every line, inserts the order with its items and
// removes the checked-out cart items, all in one transaction. Only the cart
// items named by cartItemIDs are removed. A line whose product no longer has
// enough stock aborts the whole checkout with *InsufficientStockError.
func (s *OrderStore) Place(ctx context.Context, order *models.Order, cartItemIDs []uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND total_quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("total_quantity", gorm.Expr("total_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var available []int
				if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
					Pluck("total_quantity", &available).Error; err != nil {
					return err
				}
				stockErr := &InsufficientStockError{ProductID: item.ProductID}
				if len(available) > 0 {
					stockErr.Available = available[0]
				}
				return stockErr
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if len(cartItemIDs) == 0 {
			return nil
		}
		return tx.Where("user_id = ? AND id IN ?", order.UserID, cartItemIDs).Delete(&models.CartItem{}).Error
	})
}

func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Order, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("user_id = ?", userID), offset, limit)
}

func (s *OrderStore) ListAll(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx), offset, limit)
}

func (s *OrderStore) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Session(&gorm.Session{}).
		Preload("Items").
		Order("placed_at desc").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetForUser returns ErrNotFound when the order is missing or owned by someone else.
func (s *OrderStore) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}
