package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.date, a.site_id, a.guard_id, a.shift_type, a.shift_id, a.slot_id, a.status,
		a.replacement_guard_id, a.reassigned_site_id, a.approved_by, a.approved_at, a.notes,
		a.is_temporary, a.pay_rate, a.created_at, a.updated_at, g.name, s.name
	FROM attendance_records a
	LEFT JOIN guards g ON g.id = a.guard_id
	LEFT JOIN sites s ON s.id = a.site_id
`

const attendanceOrder = ` ORDER BY a.date, a.shift_type, a.created_at`

// presentIndex is the partial unique index allowing one present record per guard, date and shift.
const presentIndex = "uk_attendance_present_once"

func scanAttendance(row pgx.Row) (attendance.AttendanceRecord, error) {
	var a attendance.AttendanceRecord
	err := row.Scan(
		&a.ID, &a.Date, &a.SiteID, &a.GuardID, &a.ShiftType, &a.ShiftID, &a.SlotID, &a.Status,
		&a.ReplacementGuardID, &a.ReassignedSiteID, &a.ApprovedBy, &a.ApprovedAt, &a.Notes,
		&a.IsTemporary, &a.PayRate, &a.CreatedAt, &a.UpdatedAt, &a.GuardName, &a.SiteName,
	)
	return a, err
}

func (r *attendanceRepositoryImpl) list(ctx context.Context, where string, args ...interface{}) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, attendanceSelect+where+attendanceOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := []attendance.AttendanceRecord{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (r *attendanceRepositoryImpl) first(ctx context.Context, where string, args ...interface{}) (*attendance.AttendanceRecord, error) {
	records, err := r.list(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO attendance_records (
			date, site_id, guard_id, shift_type, shift_id, slot_id, status,
			replacement_guard_id, reassigned_site_id, approved_by, approved_at, notes, is_temporary, pay_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`,
		a.Date, a.SiteID, a.GuardID, a.ShiftType, a.ShiftID, a.SlotID, a.Status,
		a.ReplacementGuardID, a.ReassignedSiteID, a.ApprovedBy, a.ApprovedAt, a.Notes, a.IsTemporary, a.PayRate,
	).Scan(&id)
	if err != nil {
		if violates(err, presentIndex) {
			return attendance.AttendanceRecord{}, attendance.ErrGuardPresentElsewhere
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

func (r *attendanceRepositoryImpl) FindOne(ctx context.Context, guardID, siteID string, date time.Time, shiftType shift.ShiftType) (*attendance.AttendanceRecord, error) {
	return r.first(ctx, ` WHERE a.guard_id::text = $1 AND a.site_id::text = $2 AND a.date = $3 AND a.shift_type = $4`,
		guardID, siteID, date, shiftType)
}

func (r *attendanceRepositoryImpl) FindBySlot(ctx context.Context, slotID string) (*attendance.AttendanceRecord, error) {
	return r.first(ctx, ` WHERE a.slot_id::text = $1`, slotID)
}

func (r *attendanceRepositoryImpl) FindPresentElsewhere(ctx context.Context, guardID string, date time.Time, shiftType shift.ShiftType, excludeSiteID string) (*attendance.AttendanceRecord, error) {
	return r.first(ctx, ` WHERE a.guard_id::text = $1 AND a.date = $2 AND a.shift_type = $3 AND a.status = 'present' AND a.site_id::text <> $4`,
		guardID, date, shiftType, excludeSiteID)
}

func (r *attendanceRepositoryImpl) CountPresent(ctx context.Context, siteID string, date time.Time, shiftType shift.ShiftType) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance_records
		WHERE site_id::text = $1 AND date = $2 AND shift_type = $3 AND status = 'present' AND NOT is_temporary
	`, siteID, date, shiftType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count present guards: %w", err)
	}
	return count, nil
}

func (r *attendanceRepositoryImpl) List(ctx context.Context, query attendance.RecordQuery) ([]attendance.AttendanceRecord, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if query.SiteID != nil {
		add("a.site_id::text = $%d", *query.SiteID)
	}
	if query.GuardID != nil {
		add("a.guard_id::text = $%d", *query.GuardID)
	}
	if query.Date != nil {
		add("a.date = $%d", *query.Date)
	}
	if query.StartDate != nil {
		add("a.date >= $%d", *query.StartDate)
	}
	if query.EndDate != nil {
		add("a.date <= $%d", *query.EndDate)
	}
	if query.ShiftType != nil {
		add("a.shift_type = $%d", string(*query.ShiftType))
	}
	if query.Status != nil {
		add("a.status = $%d", string(*query.Status))
	}

	return r.list(ctx, " WHERE "+strings.Join(conditions, " AND "), args...)
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_records
		SET shift_id = $2, slot_id = $3, status = $4, replacement_guard_id = $5, reassigned_site_id = $6,
			approved_by = $7, approved_at = $8, notes = $9, is_temporary = $10, pay_rate = $11, updated_at = NOW()
		WHERE id = $1
	`,
		a.ID, a.ShiftID, a.SlotID, a.Status, a.ReplacementGuardID, a.ReassignedSiteID,
		a.ApprovedBy, a.ApprovedAt, a.Notes, a.IsTemporary, a.PayRate,
	)
	if err != nil {
		if violates(err, presentIndex) {
			return attendance.ErrGuardPresentElsewhere
		}
		if notFound(err) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) DeletePresentBySiteDate(ctx context.Context, siteID string, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE site_id::text = $1 AND date = $2 AND status = 'present'`, siteID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance: %w", err)
	}
	return tag.RowsAffected(), nil
}
