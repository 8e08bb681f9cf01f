package validate

import (
	"regexp"
	"strconv"
	"strings"

	"tiendasur/internal/domain"
)

var reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

func Role(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case domain.RoleAdmin, domain.RoleVendor, domain.RoleCustomer:
		return s, true
	}
	return "", false
}

// Margin bounds the global margin percentage.
func Margin(v float64) bool { return v >= 0 && v <= 500 }

// Limit parses a list cap, clamped to [1, max]; empty/bad input yields def.
func Limit(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Password enforces a minimal length for stored accounts.
func Password(s string) bool { return len(s) >= 8 && len(s) <= 72 }
