package attendance

import (
	"context"
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
)

// RecordQuery narrows List. Nil fields are not filtered on.
type RecordQuery struct {
	SiteID    *string
	GuardID   *string
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
	ShiftType *shift.ShiftType
	Status    *Status
}

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
	GetByID(ctx context.Context, id string) (AttendanceRecord, error)

	// FindOne returns the guard's record at a site for a date and shift, nil when there is none
	FindOne(ctx context.Context, guardID, siteID string, date time.Time, shiftType shift.ShiftType) (*AttendanceRecord, error)

	// FindBySlot returns the record written for a slot, nil when there is none
	FindBySlot(ctx context.Context, slotID string) (*AttendanceRecord, error)

	// FindPresentElsewhere returns a present record for the guard at any site other than excludeSiteID
	FindPresentElsewhere(ctx context.Context, guardID string, date time.Time, shiftType shift.ShiftType, excludeSiteID string) (*AttendanceRecord, error)

	// CountPresent counts present records at a site that take up a regular slot
	CountPresent(ctx context.Context, siteID string, date time.Time, shiftType shift.ShiftType) (int, error)

	List(ctx context.Context, query RecordQuery) ([]AttendanceRecord, error)
	Update(ctx context.Context, record AttendanceRecord) error
	Delete(ctx context.Context, id string) error

	// DeletePresentBySiteDate removes every present record at the site for the date
	DeletePresentBySiteDate(ctx context.Context, siteID string, date time.Time) (int64, error)
}
