package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatusPlaced is the only status an order reaches in this service.
const OrderStatusPlaced = "placed"

// Order is an immutable snapshot of a cart at checkout.
type Order struct {
	BaseModel
	UserID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"userId"`
	Status   string          `gorm:"not null" json:"status"`
	PlacedAt time.Time       `json:"placedAt"`
	Subtotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	Items    []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	LineTotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"lineTotal"`
}
