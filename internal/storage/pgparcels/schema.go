package pgparcels

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS parcels (
  id BIGSERIAL PRIMARY KEY,
  human_name TEXT NOT NULL DEFAULT '',
  tracking_id TEXT NOT NULL,
  carrier_id TEXT NOT NULL,
  postal_code TEXT NULL,
  is_archived BOOLEAN NOT NULL DEFAULT FALSE,
  archive_prompt_dismissed BOOLEAN NOT NULL DEFAULT FALSE,
  next_check_at TIMESTAMPTZ NOT NULL,
  check_fail_count INT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_parcels_next_check_at ON parcels(next_check_at) WHERE NOT is_archived`,
		// не более одного снимка на посылку: PK по parcel_ref_id
		`
CREATE TABLE IF NOT EXISTS parcel_status (
  parcel_ref_id BIGINT PRIMARY KEY REFERENCES parcels(id) ON DELETE CASCADE,
  last_status TEXT NOT NULL,
  last_change TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS parcel_history (
  id BIGSERIAL PRIMARY KEY,
  parcel_ref_id BIGINT NOT NULL REFERENCES parcels(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  event_time TIMESTAMPTZ NOT NULL,
  location TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS idx_parcel_history_ref_time ON parcel_history(parcel_ref_id, event_time DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_parcel_history_dedup ON parcel_history(parcel_ref_id, event_time, description, location)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
