package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrOutOfStock        = errors.New("out of stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUserExists        = errors.New("user already exists")
	ErrConflict          = errors.New("already exists")
	ErrUnavailable       = errors.New("feature not configured")
)

// OutOfStockError names the product that could not cover an order line.
type OutOfStockError struct {
	ProductID uuid.UUID
	Title     string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%q has only %d left, %d requested", e.Title, e.Available, e.Requested)
	}
	return fmt.Sprintf("product %s is out of stock", e.ProductID)
}

func (e *OutOfStockError) Unwrap() error {
	return ErrOutOfStock
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
