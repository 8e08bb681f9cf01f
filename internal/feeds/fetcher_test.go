package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchJSONItemsUnwrapsKnownKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"total": 2, "productos": [{"sku":"A"},{"sku":"B"}]}`))
	}))
	defer srv.Close()

	c := NewClient()
	items, err := c.FetchJSONItems(context.Background(), srv.URL, Credentials{UserID: "u", Token: "t"}, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0]["sku"] != "A" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestFetchJSONItemsBareArrayAndEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"sku":"A"}]`))
	}))
	defer srv.Close()

	c := NewClient()
	items, err := c.FetchJSONItems(context.Background(), srv.URL, Credentials{UserID: "u", Token: "t"}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"whatever": 1}`))
	}))
	defer srv2.Close()
	items, err = c.FetchJSONItems(context.Background(), srv2.URL, Credentials{UserID: "u", Token: "t"}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("want empty, got %d", len(items))
	}
}

func TestFetchCSVErrorCarriesBodySnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("backend exploded: " + strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.FetchCSV(context.Background(), srv.URL, Credentials{UserID: "u", Token: "t"})
	if err == nil {
		t.Fatal("want error for 502")
	}
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("error should carry body snippet: %v", err)
	}
	if len(err.Error()) > 400 {
		t.Fatalf("snippet not capped: %d chars", len(err.Error()))
	}
}

func TestFetchRequiresCredentials(t *testing.T) {
	c := NewClient()
	if _, err := c.FetchCSV(context.Background(), "http://example.invalid", Credentials{}); !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("want ErrMissingConfig, got %v", err)
	}
	if _, err := c.FetchJSONItems(context.Background(), "http://example.invalid", Credentials{Token: "t"}, 1, 0); !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("want ErrMissingConfig, got %v", err)
	}
}
