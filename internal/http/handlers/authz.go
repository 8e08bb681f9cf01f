package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tiendasur/internal/domain"
	applog "tiendasur/internal/log"
	"tiendasur/internal/services"
)

// TokenFromRequest checks credential sources in priority order: custom
// header, standard bearer header, session cookie. First non-empty wins.
func TokenFromRequest(c *fiber.Ctx) string {
	if t := c.Get("X-Auth-Token"); t != "" {
		return t
	}
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if after, found := strings.CutPrefix(h, "Bearer "); found {
			return strings.TrimSpace(after)
		}
	}
	return c.Cookies("token")
}

// RequireAuth rejects requests without a verifiable token (401) and stashes
// the claims for downstream handlers.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := auth.VerifyBearer(TokenFromRequest(c))
		if claims == nil {
			applog.Security(c, "auth.denied", nil)
			return fail(c, fiber.StatusUnauthorized, "missing or invalid credentials")
		}
		c.Locals("claims", claims)
		c.Locals("actor", claims.Email)
		return c.Next()
	}
}

// RequireAdmin layers the role gate on top of RequireAuth: 401 without a
// valid credential, 403 with one that lacks the admin role.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := auth.VerifyBearer(TokenFromRequest(c))
		if claims == nil {
			applog.Security(c, "auth.denied", nil)
			return fail(c, fiber.StatusUnauthorized, "missing or invalid credentials")
		}
		if services.RequireAdmin(claims) == nil {
			applog.Security(c, "access.denied.admin", map[string]any{"email": claims.Email, "role": claims.Role})
			return fail(c, fiber.StatusForbidden, "admin role required")
		}
		c.Locals("claims", claims)
		c.Locals("actor", claims.Email)
		return c.Next()
	}
}

func claimsFrom(c *fiber.Ctx) *domain.Claims {
	claims, _ := c.Locals("claims").(*domain.Claims)
	return claims
}

func actorFrom(c *fiber.Ctx) string {
	actor, _ := c.Locals("actor").(string)
	return actor
}
