package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product line in a user's cart. Title, price and image are
// copied from the product whenever the line is written.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Images    string          `json:"images"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}
