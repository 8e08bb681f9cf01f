package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tiendasur/internal/domain"
	"tiendasur/internal/store"
)

var (
	ErrBadCreds      = errors.New("invalid credentials")
	ErrMissingConfig = errors.New("missing auth configuration")
)

const tokenTTL = 24 * time.Hour

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users          *store.UserStore
	Secret         []byte
	MasterPassword string
}

// Login authenticates either the master password (empty email, grants admin)
// or a stored user's email+password, and returns a signed token.
func (s *AuthService) Login(email, password string) (string, *domain.Claims, error) {
	if password == "" {
		return "", nil, ErrBadCreds
	}

	var claims domain.Claims
	if email == "" {
		if s.MasterPassword == "" {
			return "", nil, fmt.Errorf("%w: admin password not set", ErrMissingConfig)
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.MasterPassword)) != 1 {
			return "", nil, ErrBadCreds
		}
		claims = domain.Claims{Email: "admin@local", Name: "Administrador", Role: domain.RoleAdmin}
	} else {
		u, err := s.Users.ByEmail(email)
		if err != nil {
			return "", nil, ErrBadCreds
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
			return "", nil, ErrBadCreds
		}
		claims = domain.Claims{Email: u.Email, Name: u.Name, Role: u.Role}
	}

	token, err := s.IssueToken(claims)
	if err != nil {
		return "", nil, err
	}
	return token, &claims, nil
}

func (s *AuthService) IssueToken(c domain.Claims) (string, error) {
	if len(s.Secret) == 0 {
		return "", fmt.Errorf("%w: jwt secret not set", ErrMissingConfig)
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return t.SignedString(s.Secret)
}

// VerifyBearer returns the token's claims, or nil on any verification
// failure: bad signature, expiry, malformed input, wrong algorithm.
func (s *AuthService) VerifyBearer(token string) *domain.Claims {
	if token == "" || len(s.Secret) == 0 {
		return nil
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}
	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok {
		return nil
	}
	return &domain.Claims{Email: tc.Email, Name: tc.Name, Role: tc.Role}
}

// RequireAdmin passes claims through only for the admin role.
func RequireAdmin(c *domain.Claims) *domain.Claims {
	if c == nil || !strings.EqualFold(c.Role, domain.RoleAdmin) {
		return nil
	}
	return c
}

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}
