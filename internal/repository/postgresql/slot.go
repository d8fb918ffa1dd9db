package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type slotRepositoryImpl struct {
	db *database.DB
}

func NewSlotRepository(db *database.DB) slot.SlotRepository {
	return &slotRepositoryImpl{db: db}
}

const slotSelect = `
	SELECT d.id, d.site_id, d.date, d.shift_type, d.role_type, d.slot_number, d.assigned_guard_id,
		d.is_present, d.is_temporary, d.pay_rate, d.created_at, d.updated_at, g.name
	FROM daily_attendance_slots d
	LEFT JOIN guards g ON g.id = d.assigned_guard_id
`

const slotOrder = ` ORDER BY d.shift_type, d.is_temporary, d.role_type, d.slot_number`

func scanSlot(row pgx.Row) (slot.DailyAttendanceSlot, error) {
	var s slot.DailyAttendanceSlot
	err := row.Scan(
		&s.ID, &s.SiteID, &s.Date, &s.ShiftType, &s.RoleType, &s.SlotNumber, &s.AssignedGuardID,
		&s.IsPresent, &s.IsTemporary, &s.PayRate, &s.CreatedAt, &s.UpdatedAt, &s.GuardName,
	)
	return s, err
}

func (r *slotRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]slot.DailyAttendanceSlot, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, slotSelect+where+slotOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	slots := []slot.DailyAttendanceSlot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *slotRepositoryImpl) Create(ctx context.Context, s slot.DailyAttendanceSlot) (slot.DailyAttendanceSlot, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO daily_attendance_slots
			(site_id, date, shift_type, role_type, slot_number, assigned_guard_id, is_present, is_temporary, pay_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, s.SiteID, s.Date, s.ShiftType, s.RoleType, s.SlotNumber, s.AssignedGuardID, s.IsPresent, s.IsTemporary, s.PayRate).Scan(&id)
	if err != nil {
		if violates(err, "uk_slots_position") {
			return slot.DailyAttendanceSlot{}, slot.ErrSlotExists
		}
		return slot.DailyAttendanceSlot{}, fmt.Errorf("failed to create slot: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *slotRepositoryImpl) GetByID(ctx context.Context, id string) (slot.DailyAttendanceSlot, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSlot(q.QueryRow(ctx, slotSelect+` WHERE d.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return slot.DailyAttendanceSlot{}, slot.ErrSlotNotFound
		}
		return slot.DailyAttendanceSlot{}, fmt.Errorf("failed to get slot: %w", err)
	}
	return s, nil
}

func (r *slotRepositoryImpl) ListBySiteDate(ctx context.Context, siteID string, date time.Time) ([]slot.DailyAttendanceSlot, error) {
	return r.list(ctx, ` WHERE d.site_id::text = $1 AND d.date = $2`, siteID, date)
}

func (r *slotRepositoryImpl) ListByGuardDate(ctx context.Context, guardID string, date time.Time, shiftType shift.ShiftType) ([]slot.DailyAttendanceSlot, error) {
	return r.list(ctx, ` WHERE d.assigned_guard_id::text = $1 AND d.date = $2 AND d.shift_type = $3`, guardID, date, shiftType)
}

func (r *slotRepositoryImpl) Update(ctx context.Context, s slot.DailyAttendanceSlot) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE daily_attendance_slots
		SET assigned_guard_id = $2, is_present = $3, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.AssignedGuardID, s.IsPresent)
	if err != nil {
		if notFound(err) {
			return slot.ErrSlotNotFound
		}
		return fmt.Errorf("failed to update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return slot.ErrSlotNotFound
	}
	return nil
}

func (r *slotRepositoryImpl) ClearPresentMarks(ctx context.Context, siteID string, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE daily_attendance_slots
		SET is_present = NULL, updated_at = NOW()
		WHERE site_id = $1 AND date = $2 AND is_present
	`, siteID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to clear slot marks: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *slotRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM daily_attendance_slots WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return slot.ErrSlotNotFound
		}
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return slot.ErrSlotNotFound
	}
	return nil
}
