package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. TotalQuantity is the available stock.
type Product struct {
	BaseModel
	Title         string          `gorm:"not null" json:"title"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Delivery      string          `json:"delivery"`
	Images        string          `json:"images"`
	Rating        string          `json:"rating"`
	Reviews       string          `json:"reviews"`
	Category      string          `gorm:"index" json:"category"`
	TotalQuantity int             `gorm:"not null;default:0" json:"totalQuantity"`
}

// HomeProduct pins a product to the storefront home page.
type HomeProduct struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Position  int       `gorm:"not null;default:0" json:"position"`
}
