package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"tiendasur/internal/config"
	"tiendasur/internal/http/handlers"
	"tiendasur/internal/store"
)

const (
	testSecret = "test-secret"
	testMaster = "master-pass"
)

// newTestApp wires the full route table over an in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps, *sqlx.DB) {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := config.Config{
		DBDSN:          ":memory:",
		JWTSecret:      testSecret,
		MasterPassword: testMaster,
	}
	deps := handlers.NewDeps(db, cfg)

	app := fiber.New()
	app.Use(requestid.New())

	app.Get("/products", deps.ProductHandler.List)
	app.Get("/product", deps.ProductHandler.Get)
	app.Get("/providers", deps.ProviderHandler.List)
	app.Get("/settings", deps.SettingsHandler.Get)
	app.Get("/health", deps.HealthHandler.Health)
	app.Post("/login", deps.AuthHandler.Login)
	app.Get("/chat", deps.ChatHandler.List)
	app.Post("/chat", deps.ChatHandler.Post)

	admin := handlers.RequireAdmin(deps.Auth)
	app.Patch("/productUpdate", admin, deps.ProductHandler.Update)
	app.Post("/settings", admin, deps.SettingsHandler.Set)
	app.Get("/users", admin, deps.UserHandler.List)
	app.Post("/users", admin, deps.UserHandler.Create)
	app.Put("/users/:email", admin, deps.UserHandler.Update)
	app.Delete("/users/:email", admin, deps.UserHandler.Delete)

	return app, deps, db
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}
