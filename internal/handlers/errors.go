package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/services"
)

// ErrorHandler renders every error as {"success": false, "message": ...}.
// Errors that are not *fiber.Error are logged and hidden behind a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		fe = fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
	return c.Status(fe.Code).JSON(fiber.Map{
		"success": false,
		"message": fe.Message,
	})
}

// fromService maps service errors onto HTTP statuses.
func fromService(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrInvalidCredential):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid phone number or code")
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidQuantity):
		return fiber.NewError(fiber.StatusBadRequest, "invalid quantity")
	case errors.Is(err, services.ErrOutOfStock):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	case errors.Is(err, services.ErrUserExists):
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	case errors.Is(err, services.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "already exists")
	case errors.Is(err, services.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}

func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseUUID(c.Params(name))
}

func parseUUID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// flexString accepts a JSON string or number. Older clients send phone
// numbers and codes as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}
