package pgparcels

import (
	"context"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// ClaimDueParcelRefs выбирает пачку неархивных посылок, готовых к проверке, и "бронирует" их,
// чтобы параллельный воркер не взял их повторно. SELECT ... FOR UPDATE SKIP LOCKED.
func (s *Storage) ClaimDueParcelRefs(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.ParcelRef, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
SELECT`+refColumns+`
FROM parcels
WHERE next_check_at <= $1
  AND NOT is_archived
ORDER BY next_check_at ASC
LIMIT $2
FOR UPDATE SKIP LOCKED
`, now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due parcels")
	}

	var picked []*models.ParcelRef
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan due parcel")
		}
		picked = append(picked, r)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	leaseUntil := now.UTC().Add(lease)
	for _, r := range picked {
		_, err := tx.Exec(ctx, `UPDATE parcels SET next_check_at = $2, updated_at = now() WHERE id = $1`, r.ID, leaseUntil)
		if err != nil {
			return nil, errors.Wrap(err, "lease parcel")
		}
		r.NextCheckAt = leaseUntil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}

// ScheduleNextCheck stores the next sweep time; failed bumps the failure counter, success resets it.
func (s *Storage) ScheduleNextCheck(ctx context.Context, id uint64, at time.Time, failed bool) error {
	_, err := s.db.Exec(ctx, `
UPDATE parcels
SET
  next_check_at = $2,
  check_fail_count = CASE WHEN $3 THEN check_fail_count + 1 ELSE 0 END,
  updated_at = now()
WHERE id = $1
`, id, at.UTC(), failed)
	return errors.Wrap(err, "schedule next check")
}
