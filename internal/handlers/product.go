package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	catalog *services.CatalogService
}

func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// RegisterProductRoutes mounts public reads and admin writes on router.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router, admin fiber.Handler) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
	router.Post("/add", admin, h.CreateProduct)
	router.Patch("/update/:id", admin, h.UpdateProduct)
	router.Delete("/delete/:id", admin, h.DeleteProduct)
	router.Post("/:id/image", admin, h.UploadImage)
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	products, total, err := h.catalog.List(c.UserContext(), services.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Page:     pg,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products, "meta": pg.Meta(total)})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return fromService(err)
	}
	return ok(c, product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := h.catalog.Create(c.UserContext(), req)
	if err != nil {
		return fromService(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product has been added",
		"data":    product,
	})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := h.catalog.Update(c.UserContext(), id, req)
	if err != nil {
		return fromService(err)
	}
	return ok(c, product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.catalog.Delete(c.UserContext(), id); err != nil {
		return fromService(err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product has been deleted"})
}

// UploadImage stores the multipart "image" file and links it to the product.
func (h *ProductHandler) UploadImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	header, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image file is required")
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	product, err := h.catalog.AttachImage(c.UserContext(), id, header.Filename, file, header.Size, header.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return fromService(err)
	}
	return ok(c, product)
}

// HomeHandler serves the curated home-page product list.
type HomeHandler struct {
	catalog *services.CatalogService
}

func NewHomeHandler(catalog *services.CatalogService) *HomeHandler {
	return &HomeHandler{catalog: catalog}
}

func (h *HomeHandler) List(c *fiber.Ctx) error {
	entries, err := h.catalog.ListHome(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, entries)
}

type homeProductRequest struct {
	ProductID string `json:"productId"`
	Position  int    `json:"position"`
}

func (h *HomeHandler) Add(c *fiber.Ctx) error {
	var req homeProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	productID, err := parseUUID(req.ProductID)
	if err != nil {
		return err
	}

	entry, err := h.catalog.AddHome(c.UserContext(), productID, req.Position)
	if err != nil {
		return fromService(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entry})
}

func (h *HomeHandler) Remove(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.RemoveHome(c.UserContext(), id); err != nil {
		return fromService(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
