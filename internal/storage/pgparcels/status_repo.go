package pgparcels

import (
	"context"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// GetStatusSnapshot returns (nil, nil) when the parcel has no snapshot yet.
func (s *Storage) GetStatusSnapshot(ctx context.Context, parcelRefID uint64) (*models.StatusSnapshot, error) {
	var (
		snap   models.StatusSnapshot
		status string
	)
	err := s.db.QueryRow(ctx, `
SELECT parcel_ref_id, last_status, last_change
FROM parcel_status
WHERE parcel_ref_id = $1
`, parcelRefID).Scan(&snap.ParcelRefID, &status, &snap.LastChangeTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select status")
	}
	snap.LastStatus, _ = models.ParseStatus(status)
	return &snap, nil
}

func (s *Storage) InsertStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO parcel_status (parcel_ref_id, last_status, last_change, updated_at)
VALUES ($1,$2,$3, now())
`, snap.ParcelRefID, snap.LastStatus.String(), snap.LastChangeTimestamp.UTC())
	return errors.Wrap(err, "insert status")
}

func (s *Storage) UpdateStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error {
	tag, err := s.db.Exec(ctx, `
UPDATE parcel_status
SET last_status = $2, last_change = $3, updated_at = now()
WHERE parcel_ref_id = $1
`, snap.ParcelRefID, snap.LastStatus.String(), snap.LastChangeTimestamp.UTC())
	if err != nil {
		return errors.Wrap(err, "update status")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSnapshotNotFound
	}
	return nil
}

// UpsertStatusSnapshot is the conditional write: insert on absence, else update, in one statement.
func (s *Storage) UpsertStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO parcel_status (parcel_ref_id, last_status, last_change, updated_at)
VALUES ($1,$2,$3, now())
ON CONFLICT (parcel_ref_id)
DO UPDATE SET last_status = EXCLUDED.last_status, last_change = EXCLUDED.last_change, updated_at = now()
`, snap.ParcelRefID, snap.LastStatus.String(), snap.LastChangeTimestamp.UTC())
	return errors.Wrap(err, "upsert status")
}

func (s *Storage) DeleteStatusSnapshot(ctx context.Context, parcelRefID uint64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM parcel_status WHERE parcel_ref_id = $1`, parcelRefID)
	return errors.Wrap(err, "delete status")
}

// GetHistoryEvents returns the stored history newest first, in insertion order for equal timestamps.
func (s *Storage) GetHistoryEvents(ctx context.Context, parcelRefID uint64) ([]models.HistoryEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT description, event_time, location
FROM parcel_history
WHERE parcel_ref_id = $1
ORDER BY event_time DESC, id ASC
`, parcelRefID)
	if err != nil {
		return nil, errors.Wrap(err, "select history")
	}
	defer rows.Close()

	var out []models.HistoryEvent
	for rows.Next() {
		var e models.HistoryEvent
		if err := rows.Scan(&e.Description, &e.Time, &e.Location); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) InsertHistoryEvents(ctx context.Context, parcelRefID uint64, events []models.HistoryEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(`
INSERT INTO parcel_history (parcel_ref_id, description, event_time, location)
VALUES ($1,$2,$3,$4)
ON CONFLICT (parcel_ref_id, event_time, description, location) DO NOTHING
`, parcelRefID, e.Description, e.Time.UTC(), e.Location)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "insert history")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func (s *Storage) DeleteHistory(ctx context.Context, parcelRefID uint64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM parcel_history WHERE parcel_ref_id = $1`, parcelRefID)
	return errors.Wrap(err, "delete history")
}
