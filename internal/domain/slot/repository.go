package slot

import (
	"context"
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
)

type SlotRepository interface {
	Create(ctx context.Context, slot DailyAttendanceSlot) (DailyAttendanceSlot, error)
	GetByID(ctx context.Context, id string) (DailyAttendanceSlot, error)

	// ListBySiteDate orders by shift type, temporary flag, role and slot number
	ListBySiteDate(ctx context.Context, siteID string, date time.Time) ([]DailyAttendanceSlot, error)

	// ListByGuardDate returns every slot the guard is assigned to on the date, across sites
	ListByGuardDate(ctx context.Context, guardID string, date time.Time, shiftType shift.ShiftType) ([]DailyAttendanceSlot, error)

	// Update persists AssignedGuardID and IsPresent
	Update(ctx context.Context, slot DailyAttendanceSlot) error

	// ClearPresentMarks resets is_present to NULL for every slot marked present at the site on the date
	ClearPresentMarks(ctx context.Context, siteID string, date time.Time) (int64, error)

	Delete(ctx context.Context, id string) error
}

// BoardObserver is told about every write that changes a site's board for a date.
type BoardObserver interface {
	BoardChanged(ctx context.Context, siteID string, date time.Time)
}
