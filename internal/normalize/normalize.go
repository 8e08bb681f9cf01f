// Package normalize converts the heterogeneous value formats found in supplier
// feeds (European vs US decimals, numeric currency codes, spanish booleans)
// into canonical typed values. Every function here is total: bad input yields
// nil/false, never a panic.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseLocaleNumber parses a numeric string that may use either "1.234,56" or
// "1,234.56" notation. When both separators appear, whichever occurs last is
// the decimal point. A lone comma is treated as the decimal separator.
// Returns nil for empty, unparseable or non-finite input.
func ParseLocaleNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			// 1.234,56 -> dots are thousands, comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 -> commas are thousands
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		// only commas: last one is the decimal point
		s = strings.ReplaceAll(s[:comma], ",", "") + "." + s[comma+1:]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// NormalizeCurrency maps provider-specific currency codes to a canonical
// 3-letter code: "1"/"ars" -> ARS, "2"/"usd" -> USD, anything else is
// upper-cased as-is. Callers that need a strict shape use ValidCurrency.
func NormalizeCurrency(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "", " ":
		return ""
	case "1", "ARS":
		return "ARS"
	case "2", "USD":
		return "USD"
	}
	return s
}

// ValidCurrency reports whether code looks like an ISO 4217 code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ToBool interprets feed truthiness flags. Unknown values are false.
func ToBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y", "si", "sí":
		return true
	}
	return false
}

// EscapeFilterLiteral doubles single quotes so the value can be interpolated
// into a storage filter expression.
func EscapeFilterLiteral(raw string) string {
	return strings.ReplaceAll(raw, "'", "''")
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IdentityKey builds the dedup grouping key for a product: lowercased,
// accent-stripped brand+name with every non-alphanumeric run dropped.
// Returns "" when there is nothing identifying to group on.
func IdentityKey(brand, name string) string {
	joined := strings.ToLower(brand + " " + name)
	if stripped, _, err := transform.String(accentStripper, joined); err == nil {
		joined = stripped
	}
	var b strings.Builder
	for _, r := range joined {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
