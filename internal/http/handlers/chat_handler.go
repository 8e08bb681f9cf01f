package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "tiendasur/internal/log"
	"tiendasur/internal/store"
	"tiendasur/internal/validate"
)

type ChatHandler struct {
	Chat *store.ChatStore
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	limit := validate.Limit(c.Query("limit"), 50, 500)
	items, err := h.Chat.Recent(limit)
	if err != nil {
		applog.Error(c, "chat.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load chat log")
	}
	return ok(c, fiber.Map{"items": items})
}

func (h *ChatHandler) Post(c *fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	msg := strings.TrimSpace(body.Message)
	if msg == "" || len(msg) > 2000 {
		return fail(c, fiber.StatusBadRequest, "message must be 1-2000 characters")
	}
	entry, err := h.Chat.Append(msg)
	if err != nil {
		applog.Error(c, "chat.post.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not save message")
	}
	return ok(c, fiber.Map{"item": entry})
}
