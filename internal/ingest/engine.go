// Package ingest reconciles supplier feeds against the product store. A run
// executes strict sequential phases: provider upsert, fetch, row mapping,
// merge-upsert, prune, dedup. Partial completion is acceptable; re-running
// against an unchanged feed is a no-op.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tiendasur/internal/csvfeed"
	"tiendasur/internal/domain"
	"tiendasur/internal/feeds"
	applog "tiendasur/internal/log"
	"tiendasur/internal/normalize"
	"tiendasur/internal/store"
)

const (
	SourceJSON = "json"
	SourceCSV  = "csv"

	leaseTTL = 10 * time.Minute
)

// Options tunes one sync run. MaxErrorsBeforeAbort nil means record every
// per-row error and never abort (the scheduler's mode); a value stops the run
// once that many rows have failed (the on-demand trigger passes 100).
type Options struct {
	Source               string
	DryRun               bool
	Limit                int
	Offset               int
	Skip                 int
	Max                  int
	MaxErrorsBeforeAbort *int
}

type Engine struct {
	Products  *store.ProductStore
	Providers *store.ProviderStore
	Leases    *store.LeaseStore
	Client    *feeds.Client
	Creds     feeds.Credentials
	JSONURL   string
	CSVURL    string
}

// Sync runs the full reconciliation pipeline for one provider. A fetch
// failure aborts the whole run; per-row failures are recorded and skipped.
func (e *Engine) Sync(ctx context.Context, profile feeds.Profile, opts Options) (*domain.SyncSummary, error) {
	summary := &domain.SyncSummary{Provider: profile.ID, DryRun: opts.DryRun, Errors: []string{}}
	now := time.Now().UTC().Format(time.RFC3339)

	if !opts.DryRun {
		holder, err := e.Leases.Acquire(profile.ID, leaseTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := e.Leases.Release(profile.ID, holder); err != nil {
				applog.RunError("sync.lease.release", err, map[string]any{"provider": profile.ID})
			}
		}()

		// Phase 1: the provider metadata row is refreshed on every run.
		currency := profile.Currency
		if err := e.Providers.UpsertMerge(domain.Provider{
			ID:          profile.ID,
			Name:        profile.Name,
			API:         profile.API,
			Currency:    &currency,
			IVAIncluded: profile.IVAIncluded,
			UpdatedAt:   now,
		}); err != nil {
			return nil, fmt.Errorf("provider upsert: %w", err)
		}
	}

	// Phase 2: fetch. Any failure here aborts before a single row is written.
	rows, err := e.fetch(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.Skip > 0 && opts.Skip < len(rows) {
		rows = rows[opts.Skip:]
	} else if opts.Skip >= len(rows) {
		rows = nil
	}
	if opts.Max > 0 && opts.Max < len(rows) {
		rows = rows[:opts.Max]
	}

	// Phases 3-5: map and merge-upsert, tracking every SKU seen this run.
	seen := make(map[string]bool, len(rows))
	aborted := false
	for _, row := range rows {
		sku := sanitizeSKU(row.Value(profile.SKUAliases...))
		if sku == "" {
			summary.Skipped++
			continue
		}
		product := mapRow(profile, row, opts.Source == SourceJSON, now)
		product.SKU = sku
		seen[sku] = true

		if opts.DryRun {
			summary.Imported++
			continue
		}
		if err := e.Products.UpsertMerge(product); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", sku, err))
			if opts.MaxErrorsBeforeAbort != nil && len(summary.Errors) >= *opts.MaxErrorsBeforeAbort {
				summary.Errors = append(summary.Errors, fmt.Sprintf("aborted after %d errors", *opts.MaxErrorsBeforeAbort))
				aborted = true
				break
			}
			continue
		}
		summary.Imported++
	}

	// An aborted upsert pass never reaches prune or dedup: the seen-set is
	// incomplete and pruning against it would delete live rows.
	if aborted {
		return summary, nil
	}

	if err := e.prune(profile.ID, seen, opts.DryRun, summary); err != nil {
		return summary, err
	}
	if err := e.dedup(profile.ID, opts.DryRun, summary); err != nil {
		return summary, err
	}

	applog.Run("sync.done", map[string]any{
		"provider": profile.ID, "source": opts.Source, "dry": opts.DryRun,
		"imported": summary.Imported, "skipped": summary.Skipped,
		"pruned": summary.Pruned, "deduped": summary.Deduped, "errors": len(summary.Errors),
	})
	return summary, nil
}

func (e *Engine) fetch(ctx context.Context, opts Options) ([]csvfeed.Row, error) {
	switch opts.Source {
	case SourceJSON:
		limit := opts.Limit
		if limit <= 0 {
			limit = 100
		}
		items, err := e.Client.FetchJSONItems(ctx, e.JSONURL, e.Creds, limit, opts.Offset)
		if err != nil {
			return nil, err
		}
		rows := make([]csvfeed.Row, 0, len(items))
		for _, it := range items {
			rows = append(rows, rowFromJSON(it))
		}
		return rows, nil
	case SourceCSV, "":
		text, err := e.Client.FetchCSV(ctx, e.CSVURL, e.Creds)
		if err != nil {
			return nil, err
		}
		doc, err := csvfeed.ParseString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", feeds.ErrUpstream, err)
		}
		return doc.Rows, nil
	}
	return nil, fmt.Errorf("unknown source %q", opts.Source)
}

// Phase 6: rows whose SKU vanished from the feed are deleted. Runs only after
// the complete upsert pass so a slow feed cannot shadow-delete itself.
func (e *Engine) prune(providerID string, seen map[string]bool, dry bool, summary *domain.SyncSummary) error {
	existing, err := e.Products.ScanPartition(providerID)
	if err != nil {
		return fmt.Errorf("prune scan: %w", err)
	}
	for _, p := range existing {
		if seen[p.SKU] {
			continue
		}
		if !dry {
			if err := e.Products.Delete(providerID, p.SKU); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("prune %s: %v", p.SKU, err))
				continue
			}
		}
		summary.Pruned++
	}
	return nil
}

// Phase 7: collapse rows that differ only by supplier-specific SKU. Groups
// share a normalized brand+name identity; the best-scored row survives.
func (e *Engine) dedup(providerID string, dry bool, summary *domain.SyncSummary) error {
	existing, err := e.Products.ScanPartition(providerID)
	if err != nil {
		return fmt.Errorf("dedup scan: %w", err)
	}
	groups := make(map[string][]domain.Product)
	for _, p := range existing {
		key := normalize.IdentityKey(deref(p.Brand), deref(p.Name))
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], p)
	}
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			si, sj := qualityScore(group[i]), qualityScore(group[j])
			if si != sj {
				return si > sj
			}
			if group[i].UpdatedAt != group[j].UpdatedAt {
				return group[i].UpdatedAt > group[j].UpdatedAt
			}
			return group[i].SKU < group[j].SKU
		})
		for _, loser := range group[1:] {
			if !dry {
				if err := e.Products.Delete(providerID, loser.SKU); err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("dedup %s: %v", loser.SKU, err))
					continue
				}
			}
			summary.Deduped++
		}
	}
	return nil
}

// qualityScore ranks duplicates: images and tax data make a row more useful
// to the storefront than a bare price line.
func qualityScore(p domain.Product) int {
	score := 0
	if p.ImageURL != nil && *p.ImageURL != "" {
		score += 3
	}
	if p.ThumbURL != nil && *p.ThumbURL != "" {
		score += 2
	}
	if p.IVARate != nil && *p.IVARate != 0 {
		score += 2
	}
	if p.Price != nil && *p.Price > 0 {
		score += 1
	}
	return score
}

var skuSanitizer = strings.NewReplacer(`\`, "-", "/", "-", "#", "-", "?", "-")

// sanitizeSKU rewrites characters that break row-key addressing and URLs.
// A SKU that collapses to nothing is unusable and the row gets skipped.
func sanitizeSKU(raw string) string {
	s := strings.TrimSpace(skuSanitizer.Replace(raw))
	if s == "" || strings.Trim(s, "-") == "" {
		return ""
	}
	return s
}

// mapRow extracts canonical fields through the normalizers. The JSON path
// validates currency shape strictly; the CSV path takes the lenient value.
func mapRow(profile feeds.Profile, row csvfeed.Row, strictCurrency bool, now string) domain.Product {
	p := domain.Product{ProviderID: profile.ID, UpdatedAt: now}

	p.Name = strptr(row.Value(profile.NameAliases...))
	p.Brand = strptr(row.Value(profile.BrandAliases...))
	p.Category = strptr(row.Value(profile.CategoryAliases...))
	p.Subcategory = strptr(row.Value(profile.SubcategoryAliases...))
	p.Model = strptr(row.Value(profile.ModelAliases...))
	p.PartNumber = strptr(row.Value(profile.PartNumberAliases...))
	p.Price = normalize.ParseLocaleNumber(row.Value(profile.PriceAliases...))
	p.Stock = normalize.ParseLocaleNumber(row.Value(profile.StockAliases...))
	p.ImageURL = strptr(row.Value(profile.ImageAliases...))
	p.ThumbURL = strptr(row.Value(profile.ThumbAliases...))

	if cur := normalize.NormalizeCurrency(row.Value(profile.CurrencyAliases...)); cur != "" {
		if !strictCurrency || normalize.ValidCurrency(cur) {
			p.Currency = &cur
		}
	}
	if p.Currency == nil && profile.Currency != "" {
		c := profile.Currency
		p.Currency = &c
	}

	p.IVARate = normalize.ParseLocaleNumber(row.Value(profile.IVAAliases...))
	if p.IVARate == nil && profile.DefaultIVARate != nil {
		rate := *profile.DefaultIVARate
		p.IVARate = &rate
	}
	// Kept as the raw feed string on purpose; the boolean view lives on the
	// Provider entity.
	p.IVAIncluded = strptr(row.Value(profile.IVAIncludedAliases...))

	return p
}

func rowFromJSON(item map[string]any) csvfeed.Row {
	row := make(csvfeed.Row, len(item))
	for k, v := range item {
		switch t := v.(type) {
		case string:
			row[k] = t
		case float64:
			row[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			row[k] = strconv.FormatBool(t)
		case nil:
			row[k] = ""
		default:
			row[k] = fmt.Sprintf("%v", t)
		}
	}
	return row
}

func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
