package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// ProductStore persists catalog products.
type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

var _ ProductRepository = (*ProductStore)(nil)

func (s *ProductStore) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(product).Error)
}

// Update writes only the given columns, keyed by column name, and returns
// the stored product. Columns left out are not written.
func (s *ProductStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error) {
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetByID(ctx, id)
}

// Delete removes a product along with its home-page placement.
func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.HomeProduct{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// HomeProductStore persists the curated home-page list.
type HomeProductStore struct {
	db *gorm.DB
}

func NewHomeProductStore(db *gorm.DB) *HomeProductStore {
	return &HomeProductStore{db: db}
}

func (s *HomeProductStore) List(ctx context.Context) ([]models.HomeProduct, error) {
	var entries []models.HomeProduct
	err := s.db.WithContext(ctx).
		Preload("Product").
		Order("position asc").
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}

// Add pins a product. Pinning the same product twice yields ErrConflict.
func (s *HomeProductStore) Add(ctx context.Context, entry *models.HomeProduct) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *HomeProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.HomeProduct{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
