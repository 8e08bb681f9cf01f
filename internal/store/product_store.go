package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"tiendasur/internal/domain"
)

type ProductStore struct{ DB *sqlx.DB }

func NewProductStore(db *sqlx.DB) *ProductStore { return &ProductStore{DB: db} }

const productCols = `provider_id, sku, name, brand, category, subcategory, model,
  part_number, description, price, currency, iva_rate, iva_included, stock,
  image_url, thumb_url, margin_override, updated_at, updated_by`

// UpsertMerge creates the row or merges the supplied fields into it. Nil
// fields never clear stored values; updated_at is always stamped with the
// incoming value.
func (s *ProductStore) UpsertMerge(p domain.Product) error {
	_, err := s.DB.NamedExec(`
	  INSERT INTO products(`+productCols+`)
	  VALUES(:provider_id,:sku,:name,:brand,:category,:subcategory,:model,
	         :part_number,:description,:price,:currency,:iva_rate,:iva_included,
	         :stock,:image_url,:thumb_url,:margin_override,:updated_at,:updated_by)
	  ON CONFLICT(provider_id, sku) DO UPDATE SET
	    name            = COALESCE(excluded.name, products.name),
	    brand           = COALESCE(excluded.brand, products.brand),
	    category        = COALESCE(excluded.category, products.category),
	    subcategory     = COALESCE(excluded.subcategory, products.subcategory),
	    model           = COALESCE(excluded.model, products.model),
	    part_number     = COALESCE(excluded.part_number, products.part_number),
	    description     = COALESCE(excluded.description, products.description),
	    price           = COALESCE(excluded.price, products.price),
	    currency        = COALESCE(excluded.currency, products.currency),
	    iva_rate        = COALESCE(excluded.iva_rate, products.iva_rate),
	    iva_included    = COALESCE(excluded.iva_included, products.iva_included),
	    stock           = COALESCE(excluded.stock, products.stock),
	    image_url       = COALESCE(excluded.image_url, products.image_url),
	    thumb_url       = COALESCE(excluded.thumb_url, products.thumb_url),
	    margin_override = COALESCE(excluded.margin_override, products.margin_override),
	    updated_at      = excluded.updated_at,
	    updated_by      = COALESCE(excluded.updated_by, products.updated_by)
	`, p)
	return err
}

// ScanPartition returns every row under one provider partition.
func (s *ProductStore) ScanPartition(providerID string) ([]domain.Product, error) {
	var out []domain.Product
	err := s.DB.Select(&out, `SELECT `+productCols+` FROM products WHERE provider_id = ?`, providerID)
	return out, err
}

// ScanWhere runs a partition scan with a raw filter fragment. Callers build
// the fragment with normalize.EscapeFilterLiteral; an empty filter scans the
// whole table.
func (s *ProductStore) ScanWhere(filter string) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	if strings.TrimSpace(filter) != "" {
		q += ` WHERE ` + filter
	}
	var out []domain.Product
	err := s.DB.Select(&out, q)
	return out, err
}

// BySKU looks a row up across partitions. When the same SKU exists under
// several providers the freshest updated_at (string compare) wins.
func (s *ProductStore) BySKU(sku string) (*domain.Product, error) {
	var p domain.Product
	err := s.DB.Get(&p, `
	  SELECT `+productCols+` FROM products
	  WHERE sku = ? ORDER BY updated_at DESC LIMIT 1`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes one row; deleting an absent row is not an error.
func (s *ProductStore) Delete(providerID, sku string) error {
	_, err := s.DB.Exec(`DELETE FROM products WHERE provider_id = ? AND sku = ?`, providerID, sku)
	return err
}

// UpdateFields merges an allow-listed patch onto an existing row. The caller
// has already resolved the partition and vetted the field names.
func (s *ProductStore) UpdateFields(providerID, sku string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+2)
	for col, v := range fields {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	args = append(args, providerID, sku)
	res, err := s.DB.Exec(
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE provider_id = ? AND sku = ?`,
		args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update %s/%s: %w", providerID, sku, ErrNotFound)
	}
	return nil
}
