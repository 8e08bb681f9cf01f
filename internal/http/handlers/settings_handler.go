package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "tiendasur/internal/log"
	"tiendasur/internal/store"
	"tiendasur/internal/validate"
)

type SettingsHandler struct {
	Settings *store.SettingsStore
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	s, err := h.Settings.Get()
	if err != nil {
		applog.Error(c, "settings.get.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load settings")
	}
	return ok(c, fiber.Map{"marginPct": s.MarginPct, "updatedAt": s.UpdatedAt, "updatedBy": s.UpdatedBy})
}

func (h *SettingsHandler) Set(c *fiber.Ctx) error {
	var body struct {
		MarginPct float64 `json:"marginPct"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !validate.Margin(body.MarginPct) {
		return fail(c, fiber.StatusBadRequest, "marginPct must be between 0 and 500")
	}
	if err := h.Settings.Set(body.MarginPct, actorFrom(c)); err != nil {
		applog.Error(c, "settings.set.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not save settings")
	}
	applog.Audit(c, "settings.set", map[string]any{"marginPct": body.MarginPct})
	return ok(c, fiber.Map{"marginPct": body.MarginPct})
}
