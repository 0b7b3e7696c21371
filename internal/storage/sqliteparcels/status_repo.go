package sqliteparcels

import (
	"context"
	"database/sql"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) GetStatusSnapshot(ctx context.Context, parcelRefID uint64) (*models.StatusSnapshot, error) {
	var (
		snap       models.StatusSnapshot
		status     string
		lastChange int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT parcel_ref_id, last_status, last_change FROM parcel_status WHERE parcel_ref_id = ?`, parcelRefID,
	).Scan(&snap.ParcelRefID, &status, &lastChange)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select status")
	}
	snap.LastStatus, _ = models.ParseStatus(status)
	snap.LastChangeTimestamp = fromDB(lastChange)
	return &snap, nil
}

func (s *Storage) InsertStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parcel_status (parcel_ref_id, last_status, last_change) VALUES (?,?,?)`,
		snap.ParcelRefID, snap.LastStatus.String(), toDB(snap.LastChangeTimestamp))
	return errors.Wrap(err, "insert status")
}

func (s *Storage) UpdateStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parcel_status SET last_status = ?, last_change = ? WHERE parcel_ref_id = ?`,
		snap.LastStatus.String(), toDB(snap.LastChangeTimestamp), snap.ParcelRefID)
	if err != nil {
		return errors.Wrap(err, "update status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update status")
	}
	if n == 0 {
		return models.ErrSnapshotNotFound
	}
	return nil
}

func (s *Storage) UpsertStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO parcel_status (parcel_ref_id, last_status, last_change) VALUES (?,?,?)
ON CONFLICT (parcel_ref_id) DO UPDATE SET last_status = excluded.last_status, last_change = excluded.last_change
`, snap.ParcelRefID, snap.LastStatus.String(), toDB(snap.LastChangeTimestamp))
	return errors.Wrap(err, "upsert status")
}

func (s *Storage) DeleteStatusSnapshot(ctx context.Context, parcelRefID uint64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM parcel_status WHERE parcel_ref_id = ?`, parcelRefID)
	return errors.Wrap(err, "delete status")
}

func (s *Storage) GetHistoryEvents(ctx context.Context, parcelRefID uint64) ([]models.HistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT description, event_time, location
FROM parcel_history
WHERE parcel_ref_id = ?
ORDER BY event_time DESC, id ASC
`, parcelRefID)
	if err != nil {
		return nil, errors.Wrap(err, "select history")
	}
	defer func() { _ = rows.Close() }()

	var out []models.HistoryEvent
	for rows.Next() {
		var (
			e  models.HistoryEvent
			ts int64
		)
		if err := rows.Scan(&e.Description, &ts, &e.Location); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		e.Time = fromDB(ts)
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "rows")
}

func (s *Storage) InsertHistoryEvents(ctx context.Context, parcelRefID uint64, events []models.HistoryEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO parcel_history (parcel_ref_id, description, event_time, location)
VALUES (?,?,?,?)
ON CONFLICT DO NOTHING
`)
	if err != nil {
		return errors.Wrap(err, "prepare history insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, parcelRefID, e.Description, toDB(e.Time), e.Location); err != nil {
			return errors.Wrap(err, "insert history")
		}
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (s *Storage) DeleteHistory(ctx context.Context, parcelRefID uint64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM parcel_history WHERE parcel_ref_id = ?`, parcelRefID)
	return errors.Wrap(err, "delete history")
}
