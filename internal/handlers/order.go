package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// OrderHandler serves checkout and order history.
type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// PlaceOrder checks out the caller's cart.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), claims.UserID)
	if err != nil {
		return fromService(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed",
		"data":    order,
	})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListOrders(c.UserContext(), claims.UserID, pg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": orders, "meta": pg.Meta(total)})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(c.UserContext(), claims.UserID, id)
	if err != nil {
		return fromService(err)
	}
	return ok(c, order)
}

// ListAllOrders pages through every order. Admin only.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListAllOrders(c.UserContext(), pg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": orders, "meta": pg.Meta(total)})
}
