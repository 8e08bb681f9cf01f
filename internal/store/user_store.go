package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"tiendasur/internal/domain"
)

var ErrUserExists = errors.New("user already exists")

type UserStore struct{ DB *sqlx.DB }

func NewUserStore(db *sqlx.DB) *UserStore { return &UserStore{DB: db} }

const userCols = `email, name, password_hash, role, created_at, created_by, updated_at, updated_by`

func (s *UserStore) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := s.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE email = ?`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) List() ([]domain.User, error) {
	var out []domain.User
	err := s.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY email`)
	return out, err
}

func (s *UserStore) Create(u domain.User) error {
	u.Email = strings.ToLower(u.Email)
	_, err := s.DB.NamedExec(`
	  INSERT INTO users(`+userCols+`)
	  VALUES(:email,:name,:password_hash,:role,:created_at,:created_by,:updated_at,:updated_by)`, u)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return ErrUserExists
	}
	return err
}

// Update mutates name/role and optionally the password hash.
func (s *UserStore) Update(email, name, role, hash, actor string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := `UPDATE users SET name = ?, role = ?, updated_at = ?, updated_by = ?`
	args := []any{name, role, now, actor}
	if hash != "" {
		q += `, password_hash = ?`
		args = append(args, hash)
	}
	q += ` WHERE email = ?`
	args = append(args, strings.ToLower(email))
	res, err := s.DB.Exec(q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(email string) error {
	res, err := s.DB.Exec(`DELETE FROM users WHERE email = ?`, strings.ToLower(email))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
