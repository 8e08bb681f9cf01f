package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "tiendasur/internal/log"
	"tiendasur/internal/services"
	"tiendasur/internal/store"
	"tiendasur/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List handles GET /products?provider=&q=&limit=.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := validate.Limit(c.Query("limit"), 100, 20000)
	items, err := h.Catalog.List(c.Query("provider"), c.Query("q"), limit)
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not list products")
	}
	return ok(c, fiber.Map{"items": items})
}

// Get handles GET /product?sku=.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	sku := c.Query("sku")
	if sku == "" {
		return fail(c, fiber.StatusBadRequest, "sku is required")
	}
	p, err := h.Catalog.BySKU(sku)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "products.get.fail", err, map[string]any{"sku": sku})
		return fail(c, fiber.StatusInternalServerError, "could not load product")
	}
	return ok(c, fiber.Map{"item": p})
}

// Update handles PATCH /productUpdate?sku= with an allow-listed body.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	sku := c.Query("sku")
	if sku == "" {
		return fail(c, fiber.StatusBadRequest, "sku is required")
	}
	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.Catalog.UpdateFields(sku, patch, actorFrom(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "products.update.fail", err, map[string]any{"sku": sku})
		return fail(c, fiber.StatusInternalServerError, "could not update product")
	}
	applog.Audit(c, "products.update", map[string]any{"sku": sku, "fields": updated})
	return ok(c, fiber.Map{"sku": sku, "updated": updated})
}
