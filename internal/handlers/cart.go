package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// CartHandler serves the signed-in user's cart.
type CartHandler struct {
	cart *services.CartService
}

func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type addCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) List(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.cart.ListItems(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}
	return ok(c, items)
}

// Add puts a product in the cart. Quantity defaults to 1.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	productID, err := parseUUID(req.ProductID)
	if err != nil {
		return err
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.cart.AddItem(c.UserContext(), claims.UserID, productID, qty)
	if err != nil {
		return fromService(err)
	}
	return ok(c, item)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.cart.UpdateItem(c.UserContext(), claims.UserID, id, req.Quantity)
	if err != nil {
		return fromService(err)
	}
	return ok(c, item)
}

func (h *CartHandler) Delete(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.cart.DeleteItem(c.UserContext(), claims.UserID, id); err != nil {
		return fromService(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
