package sqliteparcels

import (
	"context"
	"database/sql"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) CreateParcelRef(ctx context.Context, in models.ParcelRefCreateInput) (*models.ParcelRef, error) {
	now := toDB(time.Now())
	res, err := s.db.ExecContext(ctx, `
INSERT INTO parcels (human_name, tracking_id, carrier_id, postal_code, next_check_at, created_at)
VALUES (?,?,?,?,?,?)
`, in.HumanName, in.TrackingID, in.CarrierID, in.PostalCode, now, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert parcel")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "last insert id")
	}
	return s.GetParcelRef(ctx, uint64(id))
}

func (s *Storage) GetParcelRef(ctx context.Context, id uint64) (*models.ParcelRef, error) {
	r, err := scanRef(s.db.QueryRowContext(ctx, `SELECT`+refColumns+` FROM parcels WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrParcelNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select parcel")
	}
	return r, nil
}

func (s *Storage) ListParcelRefs(ctx context.Context, includeArchived bool) ([]*models.ParcelRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT`+refColumns+` FROM parcels WHERE ? OR is_archived = 0 ORDER BY id`, includeArchived)
	if err != nil {
		return nil, errors.Wrap(err, "select parcels")
	}
	defer func() { _ = rows.Close() }()

	out := make([]*models.ParcelRef, 0)
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan parcel")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "rows")
}

func (s *Storage) SetArchived(ctx context.Context, id uint64, archived bool) error {
	return s.execOne(ctx, "archive parcel", `UPDATE parcels SET is_archived = ? WHERE id = ?`, archived, id)
}

func (s *Storage) DismissArchivePrompt(ctx context.Context, id uint64) error {
	return s.execOne(ctx, "dismiss archive prompt", `UPDATE parcels SET archive_prompt_dismissed = 1 WHERE id = ?`, id)
}

func (s *Storage) DeleteParcelRef(ctx context.Context, id uint64) error {
	return s.execOne(ctx, "delete parcel", `DELETE FROM parcels WHERE id = ?`, id)
}

func (s *Storage) execOne(ctx context.Context, what, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, what)
	}
	if n == 0 {
		return models.ErrParcelNotFound
	}
	return nil
}

// ClaimDueParcelRefs — аналог SKIP LOCKED для однопроцессной базы: выбор и lease в одной транзакции.
func (s *Storage) ClaimDueParcelRefs(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.ParcelRef, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
SELECT`+refColumns+`
FROM parcels
WHERE next_check_at <= ? AND is_archived = 0
ORDER BY next_check_at ASC
LIMIT ?
`, toDB(now), limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due parcels")
	}
	var picked []*models.ParcelRef
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			_ = rows.Close()
			return nil, errors.Wrap(err, "scan due parcel")
		}
		picked = append(picked, r)
	}
	_ = rows.Close()
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	leaseUntil := now.UTC().Add(lease)
	for _, r := range picked {
		if _, err := tx.ExecContext(ctx, `UPDATE parcels SET next_check_at = ? WHERE id = ?`, toDB(leaseUntil), r.ID); err != nil {
			return nil, errors.Wrap(err, "lease parcel")
		}
		r.NextCheckAt = leaseUntil
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}

func (s *Storage) ScheduleNextCheck(ctx context.Context, id uint64, at time.Time, failed bool) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE parcels
SET next_check_at = ?,
    check_fail_count = CASE WHEN ? THEN check_fail_count + 1 ELSE 0 END
WHERE id = ?
`, toDB(at), failed, id)
	return errors.Wrap(err, "schedule next check")
}
