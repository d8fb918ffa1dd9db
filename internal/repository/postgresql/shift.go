package postgresql

import (
	"context"
	"fmt"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

const shiftSelect = `
	SELECT sh.id, sh.site_id, sh.guard_id, sh.type, sh.created_at, sh.updated_at, g.name, s.name
	FROM shifts sh
	LEFT JOIN guards g ON g.id = sh.guard_id
	LEFT JOIN sites s ON s.id = sh.site_id
`

func scanShift(row pgx.Row) (shift.Shift, error) {
	var sh shift.Shift
	err := row.Scan(&sh.ID, &sh.SiteID, &sh.GuardID, &sh.Type, &sh.CreatedAt, &sh.UpdatedAt, &sh.GuardName, &sh.SiteName)
	return sh, err
}

func (r *shiftRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, shiftSelect+where+` ORDER BY sh.type, g.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := []shift.Shift{}
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (r *shiftRepositoryImpl) Create(ctx context.Context, sh shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO shifts (site_id, guard_id, type)
		VALUES ($1, $2, $3)
		RETURNING id
	`, sh.SiteID, sh.GuardID, sh.Type).Scan(&id)
	if err != nil {
		if violates(err, "uk_shifts_site_guard_type") {
			return shift.Shift{}, shift.ErrShiftExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	sh, err := scanShift(q.QueryRow(ctx, shiftSelect+` WHERE sh.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	return sh, nil
}

func (r *shiftRepositoryImpl) ListBySite(ctx context.Context, siteID string) ([]shift.Shift, error) {
	return r.list(ctx, ` WHERE sh.site_id::text = $1`, siteID)
}

func (r *shiftRepositoryImpl) ListByGuard(ctx context.Context, guardID string) ([]shift.Shift, error) {
	return r.list(ctx, ` WHERE sh.guard_id::text = $1`, guardID)
}

func (r *shiftRepositoryImpl) FindBySiteGuardType(ctx context.Context, siteID, guardID string, shiftType shift.ShiftType) (*shift.Shift, error) {
	shifts, err := r.list(ctx, ` WHERE sh.site_id::text = $1 AND sh.guard_id::text = $2 AND sh.type = $3`, siteID, guardID, shiftType)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, nil
	}
	return &shifts[0], nil
}

func (r *shiftRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return shift.ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

// ReplaceForSite runs the delete and the inserts in one transaction, so a failure leaves the
// previous set in place.
func (r *shiftRepositoryImpl) ReplaceForSite(ctx context.Context, siteID string, shiftType shift.ShiftType, guardIDs []string) ([]shift.Shift, error) {
	var shifts []shift.Shift
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `DELETE FROM shifts WHERE site_id = $1 AND type = $2`, siteID, shiftType); err != nil {
			return fmt.Errorf("failed to delete shifts: %w", err)
		}
		shifts = make([]shift.Shift, 0, len(guardIDs))
		for _, guardID := range guardIDs {
			sh, err := r.Create(ctx, shift.Shift{SiteID: siteID, GuardID: guardID, Type: shiftType})
			if err != nil {
				return err
			}
			shifts = append(shifts, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shifts, nil
}
