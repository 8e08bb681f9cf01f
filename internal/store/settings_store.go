package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"tiendasur/internal/domain"
)

// SettingsStore holds the single global row keyed (config, global).
type SettingsStore struct{ DB *sqlx.DB }

func NewSettingsStore(db *sqlx.DB) *SettingsStore { return &SettingsStore{DB: db} }

const settingsPart, settingsRow = "config", "global"

// Get returns the stored settings, or zero-margin defaults when nothing has
// been saved yet.
func (s *SettingsStore) Get() (domain.Settings, error) {
	var out domain.Settings
	err := s.DB.Get(&out, `
	  SELECT margin_pct, updated_at, updated_by FROM settings
	  WHERE part = ? AND row = ?`, settingsPart, settingsRow)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, nil
	}
	return out, err
}

func (s *SettingsStore) Set(marginPct float64, actor string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.DB.Exec(`
	  INSERT INTO settings(part, row, margin_pct, updated_at, updated_by)
	  VALUES(?,?,?,?,?)
	  ON CONFLICT(part, row) DO UPDATE SET
	    margin_pct = excluded.margin_pct,
	    updated_at = excluded.updated_at,
	    updated_by = excluded.updated_by`,
		settingsPart, settingsRow, marginPct, now, actor)
	return err
}
