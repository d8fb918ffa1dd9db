package attendance

import (
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusReplaced   Status = "replaced"
	StatusReassigned Status = "reassigned"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusReplaced),
	string(StatusReassigned),
}

// AttendanceRecord is one guard's attendance at a site for a (date, shift type).
// A guard has at most one present record per (date, shift type) across all sites.
type AttendanceRecord struct {
	ID                 string
	Date               time.Time
	SiteID             string
	GuardID            string
	ShiftType          shift.ShiftType
	ShiftID            *string
	SlotID             *string
	Status             Status
	ReplacementGuardID *string
	ReassignedSiteID   *string
	ApprovedBy         *string
	ApprovedAt         *time.Time
	Notes              *string
	IsTemporary        bool
	PayRate            *decimal.Decimal // slot pay rate, overrides the guard's daily rate
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	GuardName *string
	SiteName  *string
}

func (r AttendanceRecord) IsPresent() bool {
	return r.Status == StatusPresent
}
