package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "tiendasur/internal/log"
	"tiendasur/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// Login exchanges a password (master) or email+password (stored user) for a
// signed token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, claims, err := h.Auth.Login(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrMissingConfig) {
			applog.Error(c, "login.config", err, nil)
			return fail(c, fiber.StatusInternalServerError, err.Error())
		}
		applog.Security(c, "login.fail", map[string]any{"email": body.Email})
		return fail(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	applog.Audit(c, "login.success", map[string]any{"email": claims.Email, "role": claims.Role})
	return c.JSON(fiber.Map{"success": true, "ok": true, "token": token, "role": claims.Role})
}
