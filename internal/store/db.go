// Package store is the table layer: partition/row-key addressed entities over
// sqlite with merge-upsert semantics. Products partition by provider_id with
// sku as row key; a merge-upsert never clears a stored field that the incoming
// row left unset.
package store

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Single writer: sqlite serializes writes anyway, and :memory: databases
	// are per-connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS providers(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  api INTEGER NOT NULL DEFAULT 0,
  currency TEXT,
  fx NUMERIC,
  iva_included INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  updated_at TEXT NOT NULL
);

-- Partition key is provider_id, row key is sku.
CREATE TABLE IF NOT EXISTS products(
  provider_id TEXT NOT NULL REFERENCES providers(id),
  sku TEXT NOT NULL,
  name TEXT,
  brand TEXT,
  category TEXT,
  subcategory TEXT,
  model TEXT,
  part_number TEXT,
  description TEXT,
  price NUMERIC,
  currency TEXT,
  iva_rate NUMERIC,
  iva_included TEXT,
  stock NUMERIC,
  image_url TEXT,
  thumb_url TEXT,
  margin_override NUMERIC,
  updated_at TEXT NOT NULL,
  updated_by TEXT,
  PRIMARY KEY(provider_id, sku)
);
CREATE INDEX IF NOT EXISTS idx_products_sku  ON products(sku);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

CREATE TABLE IF NOT EXISTS users(
  email TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('admin','vendor','customer')),
  created_at TEXT NOT NULL,
  created_by TEXT,
  updated_at TEXT,
  updated_by TEXT
);

CREATE TABLE IF NOT EXISTS settings(
  part TEXT NOT NULL,
  row  TEXT NOT NULL,
  margin_pct NUMERIC NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL,
  updated_by TEXT NOT NULL DEFAULT '',
  PRIMARY KEY(part, row)
);

CREATE TABLE IF NOT EXISTS chat_log(
  id TEXT PRIMARY KEY,
  message TEXT NOT NULL,
  created_at TEXT NOT NULL
);

-- Advisory lease serializing ingestion runs per provider.
CREATE TABLE IF NOT EXISTS sync_leases(
  provider_id TEXT PRIMARY KEY,
  holder TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

// Health probes each table with a cheap scan and reports per-table status.
func Health(db *sqlx.DB) (map[string]bool, []string) {
	tables := []string{"providers", "products", "users", "settings", "chat_log", "sync_leases"}
	status := make(map[string]bool, len(tables))
	var errs []string
	for _, tbl := range tables {
		var n int
		if err := db.Get(&n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tbl)); err != nil {
			status[tbl] = false
			errs = append(errs, fmt.Sprintf("%s: %v", tbl, err))
			continue
		}
		status[tbl] = true
	}
	return status, errs
}
