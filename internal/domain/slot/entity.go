package slot

import (
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/shopspring/decimal"
)

// State is the derived lifecycle position of a slot:
// empty -> assigned -> present|absent, with present<->absent toggling and
// assigned -> empty on unassign.
type State string

const (
	StateEmpty    State = "empty"
	StateAssigned State = "assigned"
	StatePresent  State = "present"
	StateAbsent   State = "absent"
)

// DailyAttendanceSlot is a staffing position at a site on one date.
type DailyAttendanceSlot struct {
	ID              string
	SiteID          string
	Date            time.Time
	ShiftType       shift.ShiftType
	RoleType        string
	SlotNumber      int
	AssignedGuardID *string
	IsPresent       *bool // nil = assigned but unmarked
	IsTemporary     bool
	PayRate         decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	GuardName *string
}

func (s DailyAttendanceSlot) State() State {
	switch {
	case s.AssignedGuardID == nil:
		return StateEmpty
	case s.IsPresent == nil:
		return StateAssigned
	case *s.IsPresent:
		return StatePresent
	default:
		return StateAbsent
	}
}

func (s DailyAttendanceSlot) IsAssignedTo(guardID string) bool {
	return s.AssignedGuardID != nil && *s.AssignedGuardID == guardID
}

// Key identifies a regular slot position independent of its row ID.
type Key struct {
	ShiftType  shift.ShiftType
	RoleType   string
	SlotNumber int
}

func (s DailyAttendanceSlot) Key() Key {
	return Key{ShiftType: s.ShiftType, RoleType: s.RoleType, SlotNumber: s.SlotNumber}
}
