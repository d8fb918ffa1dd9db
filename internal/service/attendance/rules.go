package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
)

// Rules holds the pre-write checks shared by slot assignment and attendance marking.
// They are check-then-act reads; the storage layer's unique index is the final guard.
type Rules struct {
	attendanceRepo attendance.AttendanceRepository
	slotRepo       slot.SlotRepository
}

func NewRules(attendanceRepo attendance.AttendanceRepository, slotRepo slot.SlotRepository) *Rules {
	return &Rules{attendanceRepo: attendanceRepo, slotRepo: slotRepo}
}

// CheckNotPresentElsewhere fails when the guard is already present at another site for the date and shift.
func (r *Rules) CheckNotPresentElsewhere(ctx context.Context, guardID, siteID string, date time.Time, shiftType shift.ShiftType) error {
	other, err := r.attendanceRepo.FindPresentElsewhere(ctx, guardID, date, shiftType, siteID)
	if err != nil {
		return fmt.Errorf("failed to check attendance elsewhere: %w", err)
	}
	if other != nil {
		where := other.SiteID
		if other.SiteName != nil {
			where = *other.SiteName
		}
		return fmt.Errorf("%w (%s)", attendance.ErrGuardPresentElsewhere, where)
	}
	return nil
}

// CheckNotAssignedElsewhere fails when the guard holds a slot for the same date and shift at
// another site, or another slot on the same board.
func (r *Rules) CheckNotAssignedElsewhere(ctx context.Context, guardID string, target slot.DailyAttendanceSlot) error {
	held, err := r.slotRepo.ListByGuardDate(ctx, guardID, target.Date, target.ShiftType)
	if err != nil {
		return fmt.Errorf("failed to list guard slots: %w", err)
	}
	for _, h := range held {
		if h.ID == target.ID {
			continue
		}
		if h.SiteID != target.SiteID {
			return slot.ErrGuardAssignedElsewhere
		}
		return slot.ErrGuardAlreadyOnBoard
	}
	return nil
}

// CheckCapacity fails when the site's regular slots for the shift are all taken by present guards.
func (r *Rules) CheckCapacity(ctx context.Context, s site.Site, date time.Time, shiftType shift.ShiftType) error {
	present, err := r.attendanceRepo.CountPresent(ctx, s.ID, date, shiftType)
	if err != nil {
		return fmt.Errorf("failed to count present guards: %w", err)
	}
	if present >= s.Capacity(shiftType) {
		return fmt.Errorf("%w (%d of %d)", attendance.ErrCapacityExceeded, present, s.Capacity(shiftType))
	}
	return nil
}

// SlotForGuard returns the slot the guard holds on the site's board for the date and shift, nil when none.
func (r *Rules) SlotForGuard(ctx context.Context, guardID, siteID string, date time.Time, shiftType shift.ShiftType) (*slot.DailyAttendanceSlot, error) {
	held, err := r.slotRepo.ListByGuardDate(ctx, guardID, date, shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to list guard slots: %w", err)
	}
	for i := range held {
		if held[i].SiteID == siteID {
			return &held[i], nil
		}
	}
	return nil, nil
}

var ruleOutcomes = []error{
	attendance.ErrGuardNotAssigned,
	attendance.ErrGuardPresentElsewhere,
	attendance.ErrCapacityExceeded,
	slot.ErrSlotExists,
	slot.ErrSlotOccupied,
	slot.ErrSlotNotAssigned,
	slot.ErrGuardAssignedElsewhere,
	slot.ErrGuardAlreadyOnBoard,
	guard.ErrGuardNotFound,
	guard.ErrGuardInactive,
}

// IsRuleOutcome reports whether err is a rule rejection as opposed to a storage failure.
func IsRuleOutcome(err error) bool {
	for _, target := range ruleOutcomes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
