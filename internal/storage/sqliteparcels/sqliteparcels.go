// Package sqliteparcels хранит сохранённые посылки в одном файле SQLite (pure go драйвер).
// Используется для однопроцессной установки без Postgres.
package sqliteparcels

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database file. ":memory:" is accepted for tests.
func New(path string) (*Storage, error) {
	if path == "" {
		path = "parcelbox.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, errors.Wrap(err, "create dirs")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// один писатель; для :memory: ещё и одна общая база
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "sqlite ping")
}

func (s *Storage) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`
CREATE TABLE IF NOT EXISTS parcels (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  human_name TEXT NOT NULL DEFAULT '',
  tracking_id TEXT NOT NULL,
  carrier_id TEXT NOT NULL,
  postal_code TEXT NULL,
  is_archived INTEGER NOT NULL DEFAULT 0,
  archive_prompt_dismissed INTEGER NOT NULL DEFAULT 0,
  next_check_at INTEGER NOT NULL,
  check_fail_count INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_parcels_next_check_at ON parcels(next_check_at)`,
		`
CREATE TABLE IF NOT EXISTS parcel_status (
  parcel_ref_id INTEGER PRIMARY KEY REFERENCES parcels(id) ON DELETE CASCADE,
  last_status TEXT NOT NULL,
  last_change INTEGER NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS parcel_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  parcel_ref_id INTEGER NOT NULL REFERENCES parcels(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  event_time INTEGER NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  UNIQUE (parcel_ref_id, event_time, description, location)
)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}

// время храним в unix-наносекундах UTC
func toDB(t time.Time) int64 { return t.UTC().UnixNano() }

func fromDB(v int64) time.Time { return time.Unix(0, v).UTC() }

const refColumns = `
  id, human_name, tracking_id, carrier_id, postal_code,
  is_archived, archive_prompt_dismissed,
  next_check_at, check_fail_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRef(row rowScanner) (*models.ParcelRef, error) {
	var (
		r                 models.ParcelRef
		postal            sql.NullString
		nextCheck, create int64
	)
	if err := row.Scan(
		&r.ID, &r.HumanName, &r.TrackingID, &r.CarrierID, &postal,
		&r.IsArchived, &r.ArchivePromptDismissed,
		&nextCheck, &r.CheckFailCount, &create,
	); err != nil {
		return nil, err
	}
	if postal.Valid {
		v := postal.String
		r.PostalCode = &v
	}
	r.NextCheckAt = fromDB(nextCheck)
	r.CreatedAt = fromDB(create)
	return &r, nil
}
