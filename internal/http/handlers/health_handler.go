package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"tiendasur/internal/services"
	"tiendasur/internal/store"
)

type HealthHandler struct {
	DB *sqlx.DB
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	tables, errs := store.Health(h.DB)
	if errs == nil {
		errs = []string{}
	}
	return ok(c, fiber.Map{"tables": tables, "errors": errs})
}

type RateHandler struct {
	Rates *services.RateService
}

// DollarRate always answers 200: the rate chain terminates in constants so a
// backend outage degrades to stale-but-usable data instead of an error.
func (h *RateHandler) DollarRate(c *fiber.Ctx) error {
	r := h.Rates.Current(context.Background())
	return ok(c, fiber.Map{"compra": r.Compra, "venta": r.Venta, "fecha": r.Fecha, "fuente": r.Fuente})
}
