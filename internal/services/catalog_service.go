package services

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tiendasur/internal/domain"
	"tiendasur/internal/normalize"
	"tiendasur/internal/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 20000
)

// patchAllowList maps the mutable PATCH field names onto storage columns.
// Everything else on a Product belongs to the ingestion engine.
var patchAllowList = map[string]string{
	"name":           "name",
	"brand":          "brand",
	"category":       "category",
	"price":          "price",
	"currency":       "currency",
	"ivaRate":        "iva_rate",
	"stock":          "stock",
	"imageUrl":       "image_url",
	"marginOverride": "margin_override",
	"description":    "description",
}

type CatalogService struct {
	Products *store.ProductStore
	collator *collate.Collator
}

func NewCatalogService(products *store.ProductStore) *CatalogService {
	return &CatalogService{
		Products: products,
		collator: collate.New(language.Spanish, collate.IgnoreCase),
	}
}

// List scans the catalog, optionally filtered by provider at the storage
// layer and by free-text in process, sorted by name with empty names first.
func (s *CatalogService) List(providerID, searchTerm string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	filter := ""
	if providerID != "" {
		filter = "provider_id = '" + normalize.EscapeFilterLiteral(providerID) + "'"
	}
	items, err := s.Products.ScanWhere(filter)
	if err != nil {
		return nil, err
	}

	if searchTerm != "" {
		q := strings.ToLower(searchTerm)
		matched := items[:0]
		for _, p := range items {
			if strings.Contains(strings.ToLower(p.SKU), q) ||
				strings.Contains(strings.ToLower(str(p.Name)), q) ||
				strings.Contains(strings.ToLower(str(p.Brand)), q) {
				matched = append(matched, p)
			}
		}
		items = matched
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := str(items[i].Name), str(items[j].Name)
		if (a == "") != (b == "") {
			return a == ""
		}
		return s.collator.CompareString(a, b) < 0
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// BySKU is provider-agnostic; the store resolves duplicate SKUs across
// partitions by freshest updated_at.
func (s *CatalogService) BySKU(sku string) (*domain.Product, error) {
	return s.Products.BySKU(sku)
}

// UpdateFields applies an admin patch restricted to the allow-list, resolving
// the row's partition by SKU first. Returns the applied field names.
func (s *CatalogService) UpdateFields(sku string, patch map[string]any, actor string) ([]string, error) {
	existing, err := s.Products.BySKU(sku)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	var updated []string
	for name, value := range patch {
		col, ok := patchAllowList[name]
		if !ok {
			continue
		}
		fields[col] = value
		updated = append(updated, name)
	}
	if len(updated) == 0 {
		return []string{}, nil
	}
	sort.Strings(updated)

	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	fields["updated_by"] = actor
	if err := s.Products.UpdateFields(existing.ProviderID, sku, fields); err != nil {
		return nil, err
	}
	return updated, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
