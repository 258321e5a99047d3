package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/storage"
	"github.com/example/bazaar/internal/store"
	"github.com/example/bazaar/internal/utils"
)

// CatalogService manages products and the home-page selection.
type CatalogService struct {
	products store.ProductRepository
	home     *store.HomeProductStore
	media    storage.ObjectStorage
}

// NewCatalogService builds the service. media may be nil, in which case
// image uploads report ErrUnavailable.
func NewCatalogService(products store.ProductRepository, home *store.HomeProductStore, media storage.ObjectStorage) *CatalogService {
	return &CatalogService{products: products, home: home, media: media}
}

// ProductInput carries product fields. Nil fields are left alone on update.
type ProductInput struct {
	Title         *string          `json:"title"`
	Price         *decimal.Decimal `json:"price"`
	Delivery      *string          `json:"delivery"`
	Images        *string          `json:"images"`
	Rating        *string          `json:"rating"`
	Reviews       *string          `json:"reviews"`
	Category      *string          `json:"category"`
	TotalQuantity *int             `json:"totalQuantity"`
}

// priceScale is the number of decimal places a stored price keeps.
const priceScale = 2

// changes validates the fields that are set and returns them keyed by column.
func (in ProductInput) changes() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title is required")
		}
		fields["title"] = title
	}
	if in.Price != nil {
		switch {
		case in.Price.IsNegative():
			return nil, invalidInput("price must not be negative")
		case !in.Price.Equal(in.Price.Round(priceScale)):
			return nil, invalidInput("price must have at most %d decimal places", priceScale)
		}
		fields["price"] = *in.Price
	}
	if in.Delivery != nil {
		fields["delivery"] = *in.Delivery
	}
	if in.Images != nil {
		fields["images"] = *in.Images
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if in.Reviews != nil {
		fields["reviews"] = *in.Reviews
	}
	if in.Category != nil {
		fields["category"] = strings.TrimSpace(*in.Category)
	}
	if in.TotalQuantity != nil {
		if *in.TotalQuantity < 0 {
			return nil, invalidInput("totalQuantity must not be negative")
		}
		fields["total_quantity"] = *in.TotalQuantity
	}
	return fields, nil
}

func (in ProductInput) product() (*models.Product, error) {
	if in.Title == nil {
		return nil, invalidInput("title is required")
	}
	if in.Price == nil {
		return nil, invalidInput("price is required")
	}
	if _, err := in.changes(); err != nil {
		return nil, err
	}

	p := &models.Product{
		Title: strings.TrimSpace(*in.Title),
		Price: *in.Price,
	}
	if in.Delivery != nil {
		p.Delivery = *in.Delivery
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Reviews != nil {
		p.Reviews = *in.Reviews
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.TotalQuantity != nil {
		p.TotalQuantity = *in.TotalQuantity
	}
	return p, nil
}

// ProductQuery filters a catalog listing.
type ProductQuery struct {
	Category string
	Search   string
	Page     utils.Pagination
}

func (s *CatalogService) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	return s.products.List(ctx, store.ProductFilter{
		Category: q.Category,
		Search:   q.Search,
		Offset:   q.Page.Offset,
		Limit:    q.Page.Limit,
	})
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return product, nil
}

func (s *CatalogService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product, err := input.product()
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update changes only the fields set in input.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	fields, err := input.changes()
	if err != nil {
		return nil, err
	}
	product, err := s.products.Update(ctx, id, fields)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return mapStoreErr(s.products.Delete(ctx, id))
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var imageFileExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// AttachImage uploads an image and points the product's Images field at it.
func (s *CatalogService) AttachImage(ctx context.Context, id uuid.UUID, filename string, r io.Reader, size int64, contentType string) (*models.Product, error) {
	if s.media == nil {
		return nil, ErrUnavailable
	}

	// The stored key always takes its extension from the checked content type.
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, invalidInput("unsupported image type %q", contentType)
	}
	if fromName := strings.ToLower(path.Ext(filename)); fromName != "" && !imageFileExtensions[fromName] {
		return nil, invalidInput("unsupported image file %q", filename)
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	key := fmt.Sprintf("products/%s/%s%s", product.ID, uuid.NewString(), ext)
	if err := s.media.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	updated, err := s.products.Update(ctx, product.ID, map[string]interface{}{"images": s.media.URL(key)})
	if err != nil {
		_ = s.media.Delete(ctx, key)
		return nil, mapStoreErr(err)
	}
	return updated, nil
}

func (s *CatalogService) ListHome(ctx context.Context) ([]models.HomeProduct, error) {
	return s.home.List(ctx)
}

func (s *CatalogService) AddHome(ctx context.Context, productID uuid.UUID, position int) (*models.HomeProduct, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	entry := &models.HomeProduct{ProductID: product.ID, Position: position}
	if err := s.home.Add(ctx, entry); err != nil {
		return nil, mapStoreErr(err)
	}
	entry.Product = product
	return entry, nil
}

func (s *CatalogService) RemoveHome(ctx context.Context, id uuid.UUID) error {
	return mapStoreErr(s.home.Delete(ctx, id))
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
