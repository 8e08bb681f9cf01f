// Package csvfeed turns raw delimited supplier payloads into header-keyed
// rows. Supplier exports are messy: BOM prefixes, quoted fields with embedded
// commas and newlines, doubled-quote escapes, short trailing rows and header
// names that drift between dumps ("sku" vs "codigo"). The parser absorbs all
// of that; consumers get a []Row and an alias-based column resolver.
package csvfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Row maps a trimmed header name to the raw string value of one record.
type Row map[string]string

// Document is a parsed feed: ordered headers plus one Row per data record.
type Document struct {
	Headers []string
	Rows    []Row
}

// Parse reads a comma-delimited document whose first record is the header.
// Blank lines are skipped, short records are padded with empty strings, a
// leading byte-order-mark is stripped.
func Parse(r io.Reader) (*Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv read: %w", err)
	}
	if len(records) == 0 {
		return &Document{}, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.TrimSpace(h)
	}

	doc := &Document{Headers: headers}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

// ParseString parses in-memory feed text.
func ParseString(text string) (*Document, error) {
	return Parse(strings.NewReader(text))
}

// ParseLatin1 decodes a Latin-1 encoded feed before parsing. Some suppliers
// still export ISO 8859-1.
func ParseLatin1(r io.Reader) (*Document, error) {
	return Parse(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ResolveColumn finds the header matching any of the ordered aliases.
// Exact match (trimmed, case-insensitive) wins; when nothing matches exactly,
// a contains-match is attempted so "codigo de producto" still resolves the
// "codigo" alias. Returns "" when no header matches.
func ResolveColumn(headers []string, aliases []string) string {
	for _, a := range aliases {
		want := strings.ToLower(strings.TrimSpace(a))
		for _, h := range headers {
			if strings.ToLower(strings.TrimSpace(h)) == want {
				return h
			}
		}
	}
	for _, a := range aliases {
		want := strings.ToLower(strings.TrimSpace(a))
		if want == "" {
			continue
		}
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), want) {
				return h
			}
		}
	}
	return ""
}

// Value reads the field for the first alias that resolves against the row's
// own keys, trimmed.
func (r Row) Value(aliases ...string) string {
	headers := make([]string, 0, len(r))
	for h := range r {
		headers = append(headers, h)
	}
	if col := ResolveColumn(headers, aliases); col != "" {
		return strings.TrimSpace(r[col])
	}
	return ""
}
