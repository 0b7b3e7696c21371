package pgparcels

import (
	"context"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const refColumns = `
  id, human_name, tracking_id, carrier_id, postal_code,
  is_archived, archive_prompt_dismissed,
  next_check_at, check_fail_count, created_at`

func scanRef(row pgx.Row) (*models.ParcelRef, error) {
	var r models.ParcelRef
	if err := row.Scan(
		&r.ID, &r.HumanName, &r.TrackingID, &r.CarrierID, &r.PostalCode,
		&r.IsArchived, &r.ArchivePromptDismissed,
		&r.NextCheckAt, &r.CheckFailCount, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) CreateParcelRef(ctx context.Context, in models.ParcelRefCreateInput) (*models.ParcelRef, error) {
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx, `
INSERT INTO parcels (
  human_name, tracking_id, carrier_id, postal_code, next_check_at, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$5,$5)
RETURNING`+refColumns, in.HumanName, in.TrackingID, in.CarrierID, in.PostalCode, now)
	r, err := scanRef(row)
	if err != nil {
		return nil, errors.Wrap(err, "insert parcel")
	}
	return r, nil
}

func (s *Storage) GetParcelRef(ctx context.Context, id uint64) (*models.ParcelRef, error) {
	r, err := scanRef(s.db.QueryRow(ctx, `SELECT`+refColumns+` FROM parcels WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrParcelNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select parcel")
	}
	return r, nil
}

func (s *Storage) ListParcelRefs(ctx context.Context, includeArchived bool) ([]*models.ParcelRef, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+refColumns+`
FROM parcels
WHERE $1 OR NOT is_archived
ORDER BY id
`, includeArchived)
	if err != nil {
		return nil, errors.Wrap(err, "select parcels")
	}
	defer rows.Close()

	out := make([]*models.ParcelRef, 0)
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan parcel")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) SetArchived(ctx context.Context, id uint64, archived bool) error {
	return s.execOne(ctx, "archive parcel",
		`UPDATE parcels SET is_archived = $2, updated_at = now() WHERE id = $1`, id, archived)
}

func (s *Storage) DismissArchivePrompt(ctx context.Context, id uint64) error {
	return s.execOne(ctx, "dismiss archive prompt",
		`UPDATE parcels SET archive_prompt_dismissed = TRUE, updated_at = now() WHERE id = $1`, id)
}

func (s *Storage) DeleteParcelRef(ctx context.Context, id uint64) error {
	return s.execOne(ctx, "delete parcel", `DELETE FROM parcels WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one parcel row.
func (s *Storage) execOne(ctx context.Context, what, q string, args ...any) error {
	tag, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, what)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrParcelNotFound
	}
	return nil
}
