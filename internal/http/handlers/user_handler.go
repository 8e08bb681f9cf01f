package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"tiendasur/internal/domain"
	applog "tiendasur/internal/log"
	"tiendasur/internal/services"
	"tiendasur/internal/store"
	"tiendasur/internal/validate"
)

type UserHandler struct {
	Users *store.UserStore
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "users.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not list users")
	}
	return ok(c, fiber.Map{"items": users})
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	email, okEmail := validate.Email(body.Email)
	if !okEmail {
		return fail(c, fiber.StatusBadRequest, "invalid email")
	}
	role, okRole := validate.Role(body.Role)
	if !okRole {
		return fail(c, fiber.StatusBadRequest, "role must be admin, vendor or customer")
	}
	if !validate.Password(body.Password) {
		return fail(c, fiber.StatusBadRequest, "password must be 8-72 characters")
	}

	hash, err := services.HashPassword(body.Password)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not hash password")
	}
	actor := actorFrom(c)
	u := domain.User{
		Email:     email,
		Name:      strings.TrimSpace(body.Name),
		Hash:      hash,
		Role:      role,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		CreatedBy: &actor,
	}
	if err := h.Users.Create(u); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return fail(c, fiber.StatusBadRequest, "user already exists")
		}
		applog.Error(c, "users.create.fail", err, map[string]any{"email": email})
		return fail(c, fiber.StatusInternalServerError, "could not create user")
	}
	applog.Audit(c, "users.create", map[string]any{"email": email, "role": role})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "email": email})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	email, okEmail := validate.Email(c.Params("email"))
	if !okEmail {
		return fail(c, fiber.StatusBadRequest, "invalid email")
	}
	var body struct {
		Name     string `json:"name"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	role, okRole := validate.Role(body.Role)
	if !okRole {
		return fail(c, fiber.StatusBadRequest, "role must be admin, vendor or customer")
	}
	hash := ""
	if body.Password != "" {
		if !validate.Password(body.Password) {
			return fail(c, fiber.StatusBadRequest, "password must be 8-72 characters")
		}
		var err error
		if hash, err = services.HashPassword(body.Password); err != nil {
			return fail(c, fiber.StatusInternalServerError, "could not hash password")
		}
	}

	if err := h.Users.Update(email, strings.TrimSpace(body.Name), role, hash, actorFrom(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "user not found")
		}
		applog.Error(c, "users.update.fail", err, map[string]any{"email": email})
		return fail(c, fiber.StatusInternalServerError, "could not update user")
	}
	applog.Audit(c, "users.update", map[string]any{"email": email, "role": role})
	return ok(c, fiber.Map{"email": email})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	email, okEmail := validate.Email(c.Params("email"))
	if !okEmail {
		return fail(c, fiber.StatusBadRequest, "invalid email")
	}
	if claims := claimsFrom(c); claims != nil && strings.EqualFold(claims.Email, email) {
		return fail(c, fiber.StatusBadRequest, "cannot delete your own account")
	}
	if err := h.Users.Delete(email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "user not found")
		}
		applog.Error(c, "users.delete.fail", err, map[string]any{"email": email})
		return fail(c, fiber.StatusInternalServerError, "could not delete user")
	}
	applog.Audit(c, "users.delete", map[string]any{"email": email})
	return ok(c, fiber.Map{"email": email})
}
