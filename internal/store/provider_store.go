package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tiendasur/internal/domain"
)

type ProviderStore struct{ DB *sqlx.DB }

func NewProviderStore(db *sqlx.DB) *ProviderStore { return &ProviderStore{DB: db} }

// UpsertMerge writes the supplier metadata row; ingestion calls this
// unconditionally on every run.
func (s *ProviderStore) UpsertMerge(p domain.Provider) error {
	_, err := s.DB.NamedExec(`
	  INSERT INTO providers(id, name, api, currency, fx, iva_included, notes, updated_at)
	  VALUES(:id, :name, :api, :currency, :fx, :iva_included, :notes, :updated_at)
	  ON CONFLICT(id) DO UPDATE SET
	    name         = excluded.name,
	    api          = excluded.api,
	    currency     = COALESCE(excluded.currency, providers.currency),
	    fx           = COALESCE(excluded.fx, providers.fx),
	    iva_included = excluded.iva_included,
	    notes        = COALESCE(excluded.notes, providers.notes),
	    updated_at   = excluded.updated_at
	`, p)
	return err
}

func (s *ProviderStore) List() ([]domain.Provider, error) {
	var out []domain.Provider
	err := s.DB.Select(&out, `
	  SELECT id, name, api, currency, fx, iva_included, notes, updated_at
	  FROM providers ORDER BY name`)
	return out, err
}

func (s *ProviderStore) ByID(id string) (*domain.Provider, error) {
	var p domain.Provider
	err := s.DB.Get(&p, `
	  SELECT id, name, api, currency, fx, iva_included, notes, updated_at
	  FROM providers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
