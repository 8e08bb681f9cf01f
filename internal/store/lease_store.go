package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrSyncRunning means another ingestion run holds the provider's lease.
var ErrSyncRunning = errors.New("sync already running for provider")

// LeaseStore is an advisory per-provider mutex with a bounded lifetime. It
// serializes overlapping ingestion runs so one run's prune phase cannot race
// another's upsert phase. An expired lease can be stolen.
type LeaseStore struct{ DB *sqlx.DB }

func NewLeaseStore(db *sqlx.DB) *LeaseStore { return &LeaseStore{DB: db} }

// Acquire takes the lease for providerID, returning a holder token to release
// with. ErrSyncRunning when a live lease is held by someone else.
func (s *LeaseStore) Acquire(providerID string, ttl time.Duration) (string, error) {
	holder := uuid.NewString()
	now := time.Now().UTC()
	res, err := s.DB.Exec(`
	  INSERT INTO sync_leases(provider_id, holder, expires_at)
	  VALUES(?,?,?)
	  ON CONFLICT(provider_id) DO UPDATE SET
	    holder = excluded.holder,
	    expires_at = excluded.expires_at
	  WHERE sync_leases.expires_at < ?`,
		providerID, holder, now.Add(ttl).Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrSyncRunning
	}
	return holder, nil
}

// Release drops the lease if we still hold it.
func (s *LeaseStore) Release(providerID, holder string) error {
	_, err := s.DB.Exec(`DELETE FROM sync_leases WHERE provider_id = ? AND holder = ?`, providerID, holder)
	return err
}
