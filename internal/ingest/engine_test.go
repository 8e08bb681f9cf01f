package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"

	"tiendasur/internal/feeds"
	"tiendasur/internal/store"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// feedServer serves a mutable CSV body so tests can change the upstream feed
// between runs.
func feedServer(body *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(*body))
	}))
}

func newEngine(t *testing.T, db *sqlx.DB, csvURL string) *Engine {
	t.Helper()
	return &Engine{
		Products:  store.NewProductStore(db),
		Providers: store.NewProviderStore(db),
		Leases:    store.NewLeaseStore(db),
		Client:    feeds.NewClient(),
		Creds:     feeds.Credentials{UserID: "u", Token: "t"},
		CSVURL:    csvURL,
	}
}

func TestSyncIdempotent(t *testing.T) {
	body := "codigo_alfa,nombre,marca,precio,stock_total\nA1,Mouse Inalambrico,Logi,\"1.234,56\",10\nB2,Teclado,Redra,99,5\n"
	srv := feedServer(&body)
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)

	s1, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV})
	if err != nil {
		t.Fatal(err)
	}
	if s1.Imported != 2 || s1.Pruned != 0 || len(s1.Errors) != 0 {
		t.Fatalf("first run: %+v", s1)
	}

	s2, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV})
	if err != nil {
		t.Fatal(err)
	}
	if s2.Imported != 2 || s2.Pruned != 0 || s2.Deduped != 0 {
		t.Fatalf("second run not idempotent: %+v", s2)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products WHERE provider_id='elit'`); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 rows after two runs, got %d", n)
	}

	var price float64
	if err := db.Get(&price, `SELECT price FROM products WHERE sku='A1'`); err != nil {
		t.Fatal(err)
	}
	if price != 1234.56 {
		t.Fatalf("locale price not normalized: %v", price)
	}
}

func TestSyncPrunesVanishedSKUs(t *testing.T) {
	body := "sku,nombre,marca\nA,Uno,M1\nB,Dos,M2\nC,Tres,M3\n"
	srv := feedServer(&body)
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)
	if _, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV}); err != nil {
		t.Fatal(err)
	}

	body = "sku,nombre,marca\nA,Uno,M1\nC,Tres,M3\n"
	s, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV})
	if err != nil {
		t.Fatal(err)
	}
	if s.Pruned != 1 {
		t.Fatalf("want 1 pruned, got %+v", s)
	}

	var skus []string
	if err := db.Select(&skus, `SELECT sku FROM products WHERE provider_id='elit' ORDER BY sku`); err != nil {
		t.Fatal(err)
	}
	if len(skus) != 2 || skus[0] != "A" || skus[1] != "C" {
		t.Fatalf("want [A C], got %v", skus)
	}
}

func TestSyncDedupKeepsBestScored(t *testing.T) {
	// Same brand+name modulo accents/casing; only one row has an image.
	body := "sku,nombre,marca,imagen\nZZ-1,Cámara Web,Acme,\nAA-2,camara web,ACME,http://img/x.jpg\n"
	srv := feedServer(&body)
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)
	s, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV})
	if err != nil {
		t.Fatal(err)
	}
	if s.Deduped != 1 {
		t.Fatalf("want 1 deduped, got %+v", s)
	}

	var skus []string
	if err := db.Select(&skus, `SELECT sku FROM products WHERE provider_id='elit'`); err != nil {
		t.Fatal(err)
	}
	if len(skus) != 1 || skus[0] != "AA-2" {
		t.Fatalf("survivor should be the row with the image, got %v", skus)
	}
}

func TestSyncSkipsRowsWithoutSKU(t *testing.T) {
	body := "sku,nombre\n,NoKey\n#?,Hostile\nOK-1,Fine\n"
	srv := feedServer(&body)
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)
	s, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV})
	if err != nil {
		t.Fatal(err)
	}
	if s.Skipped != 2 || s.Imported != 1 {
		t.Fatalf("want 2 skipped / 1 imported, got %+v", s)
	}
}

func TestSyncDryRunWritesNothing(t *testing.T) {
	body := "sku,nombre\nA,Uno\n"
	srv := feedServer(&body)
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)
	s, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !s.DryRun || s.Imported != 1 {
		t.Fatalf("dry summary: %+v", s)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("dry run wrote %d rows", n)
	}
}

func TestSyncFetchFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)
	if _, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV}); err == nil {
		t.Fatal("want error on upstream failure")
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("aborted run wrote %d rows", n)
	}
}

func TestSyncLeaseBlocksOverlap(t *testing.T) {
	body := "sku,nombre\nA,Uno\n"
	srv := feedServer(&body)
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)

	holder, err := e.Leases.Acquire("elit", leaseTTL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV}); err != store.ErrSyncRunning {
		t.Fatalf("want ErrSyncRunning, got %v", err)
	}
	if err := e.Leases.Release("elit", holder); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceCSV}); err != nil {
		t.Fatalf("sync after release: %v", err)
	}
}

func TestSyncJSONSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[
		  {"codigo_alfa":"J1","nombre":"Notebook","marca":"Lenv","precio":1500.5,"moneda":"2","stock_total":3},
		  {"codigo_alfa":"J2","nombre":"Tablet","marca":"Sams","precio":"800","moneda":"pesos"}
		]}`))
	}))
	defer srv.Close()

	db := memdb(t)
	e := newEngine(t, db, srv.URL)
	e.JSONURL = srv.URL

	s, err := e.Sync(context.Background(), feeds.Elit(), Options{Source: SourceJSON, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if s.Imported != 2 {
		t.Fatalf("want 2 imported, got %+v", s)
	}

	var cur string
	if err := db.Get(&cur, `SELECT currency FROM products WHERE sku='J1'`); err != nil {
		t.Fatal(err)
	}
	if cur != "USD" {
		t.Fatalf(`currency "2" should normalize to USD, got %q`, cur)
	}
	// Strict JSON path drops the malformed code and falls back to the
	// profile currency.
	if err := db.Get(&cur, `SELECT currency FROM products WHERE sku='J2'`); err != nil {
		t.Fatal(err)
	}
	if cur != "USD" {
		t.Fatalf("invalid currency should fall back to profile default, got %q", cur)
	}

	var iva float64
	if err := db.Get(&iva, `SELECT iva_rate FROM products WHERE sku='J1'`); err != nil {
		t.Fatal(err)
	}
	if iva != 10.5 {
		t.Fatalf("ELIT default IVA not applied: %v", iva)
	}
}
