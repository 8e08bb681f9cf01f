package handlers

import "github.com/gofiber/fiber/v2"

// Every endpoint answers {ok:true,...} or {ok:false,error}.

func ok(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["ok"] = true
	return c.JSON(data)
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"ok": false, "error": msg})
}
