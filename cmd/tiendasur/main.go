package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tiendasur/internal/config"
	"tiendasur/internal/http/handlers"
	applog "tiendasur/internal/log"
	"tiendasur/internal/scheduler"
	"tiendasur/internal/store"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := store.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(db, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"ok": false, "error": fe.Message})
			}
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "internal error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{Max: 120, Expiration: time.Minute}))

	// Public reads
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/product", deps.ProductHandler.Get)
	app.Get("/providers", deps.ProviderHandler.List)
	app.Get("/settings", deps.SettingsHandler.Get)
	app.Get("/dollar-rate", deps.RateHandler.DollarRate)
	app.Get("/health", deps.HealthHandler.Health)

	// Auth (login throttled)
	app.Post("/login", limiter.New(limiter.Config{Max: 10, Expiration: 10 * time.Minute}), deps.AuthHandler.Login)

	// Chat log
	app.Get("/chat", deps.ChatHandler.List)
	app.Post("/chat", deps.ChatHandler.Post)

	// Admin mutations
	admin := handlers.RequireAdmin(deps.Auth)
	app.Patch("/productUpdate", admin, deps.ProductHandler.Update)
	app.Post("/providers/sync/elit", admin, deps.ProviderHandler.SyncElit)
	app.Post("/settings", admin, deps.SettingsHandler.Set)
	app.Get("/users", admin, deps.UserHandler.List)
	app.Post("/users", admin, deps.UserHandler.Create)
	app.Put("/users/:email", admin, deps.UserHandler.Update)
	app.Delete("/users/:email", admin, deps.UserHandler.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": "not found"})
	})

	sched := &scheduler.Scheduler{Engine: deps.Engine, Interval: cfg.SyncInterval}
	sched.Start(context.Background())

	log.Fatal(app.Listen(":" + cfg.Port))
}
