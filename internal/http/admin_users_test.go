package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tiendasur/internal/domain"
)

func adminReq(t *testing.T, method, target, body, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUserCRUD(t *testing.T) {
	app, deps, _ := newTestApp(t)
	tok, err := deps.Auth.IssueToken(domain.Claims{Email: "root@x.test", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	// Create
	resp, err := app.Test(adminReq(t, "POST", "/users",
		`{"email":"Vendor@Shop.Test","name":"Vendo","password":"Str0ngPass!","role":"vendor"}`, tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: want 201, got %d", resp.StatusCode)
	}
	if decodeBody(t, resp)["email"] != "vendor@shop.test" {
		t.Fatal("email should be lowercased")
	}

	// Duplicate -> 400
	resp, err = app.Test(adminReq(t, "POST", "/users",
		`{"email":"vendor@shop.test","name":"V","password":"Str0ngPass!","role":"vendor"}`, tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate: want 400, got %d", resp.StatusCode)
	}

	// Invalid role -> 400
	resp, err = app.Test(adminReq(t, "POST", "/users",
		`{"email":"x@y.test","name":"X","password":"Str0ngPass!","role":"root"}`, tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad role: want 400, got %d", resp.StatusCode)
	}

	// Update
	resp, err = app.Test(adminReq(t, "PUT", "/users/vendor@shop.test",
		`{"name":"Vendedor","role":"customer"}`, tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: want 200, got %d", resp.StatusCode)
	}

	// List shows the user, never the hash
	resp, err = app.Test(adminReq(t, "GET", "/users", "", tok))
	if err != nil {
		t.Fatal(err)
	}
	items := decodeBody(t, resp)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("want 1 user, got %d", len(items))
	}
	if _, leaked := items[0].(map[string]any)["passwordHash"]; leaked {
		t.Fatal("password hash leaked in listing")
	}

	// Delete
	resp, err = app.Test(adminReq(t, "DELETE", "/users/vendor@shop.test", "", tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: want 200, got %d", resp.StatusCode)
	}

	// Deleting again -> 404
	resp, err = app.Test(adminReq(t, "DELETE", "/users/vendor@shop.test", "", tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete missing: want 404, got %d", resp.StatusCode)
	}
}

func TestSelfDeleteForbidden(t *testing.T) {
	app, deps, _ := newTestApp(t)
	tok, err := deps.Auth.IssueToken(domain.Claims{Email: "me@x.test", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := app.Test(adminReq(t, "DELETE", "/users/me@x.test", "", tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self-delete: want 400, got %d", resp.StatusCode)
	}
}

func TestSettingsRoundTripAndBounds(t *testing.T) {
	app, deps, _ := newTestApp(t)
	tok, err := deps.Auth.IssueToken(domain.Claims{Email: "a@x.test", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	// Defaults before anything is saved
	resp, err := app.Test(httptest.NewRequest("GET", "/settings", nil))
	if err != nil {
		t.Fatal(err)
	}
	if decodeBody(t, resp)["marginPct"].(float64) != 0 {
		t.Fatal("unset settings should default to 0 margin")
	}

	// Out of bounds -> 400
	resp, err = app.Test(adminReq(t, "POST", "/settings", `{"marginPct":900}`, tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("margin 900: want 400, got %d", resp.StatusCode)
	}

	// Save and read back
	resp, err = app.Test(adminReq(t, "POST", "/settings", `{"marginPct":35.5}`, tok))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: want 200, got %d", resp.StatusCode)
	}
	resp, err = app.Test(httptest.NewRequest("GET", "/settings", nil))
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	if body["marginPct"].(float64) != 35.5 || body["updatedBy"] != "a@x.test" {
		t.Fatalf("settings not persisted: %v", body)
	}
}

func TestChatAppendAndList(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/chat", strings.NewReader(`{"message":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post: want 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/chat", nil))
	if err != nil {
		t.Fatal(err)
	}
	items := decodeBody(t, resp)["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["message"] != "hola" {
		t.Fatalf("chat log: %v", items)
	}

	// Empty message rejected
	req = httptest.NewRequest("POST", "/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank message: want 400, got %d", resp.StatusCode)
	}
}

func TestHealthReportsTables(t *testing.T) {
	app, _, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	tables := body["tables"].(map[string]any)
	for _, tbl := range []string{"products", "providers", "users", "settings", "chat_log"} {
		if tables[tbl] != true {
			t.Fatalf("table %s not healthy: %v", tbl, body)
		}
	}
}
