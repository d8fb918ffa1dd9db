package site

import (
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypeMonthly  RateType = "monthly"
	RateTypePerShift RateType = "per_shift"
)

var RateTypeValues = []string{
	string(RateTypeMonthly),
	string(RateTypePerShift),
}

// DefaultRole is used for sites still configured with the flat day/night slot counts.
const DefaultRole = "Security Guard"

// StaffingSlot is one role requirement of a site.
type StaffingSlot struct {
	Role        string
	DaySlots    int
	NightSlots  int
	RatePerSlot decimal.Decimal
	RateType    RateType
}

// Count returns the number of slots of the given shift type.
func (s StaffingSlot) Count(shiftType shift.ShiftType) int {
	if shiftType == shift.ShiftTypeNight {
		return s.NightSlots
	}
	return s.DaySlots
}

type Site struct {
	ID            string
	Name          string
	Address       string
	City          *string
	ContactPhone  *string
	StaffingSlots []StaffingSlot

	// Legacy flat configuration, used only when StaffingSlots is empty
	DaySlots   int
	NightSlots int
	PayRate    decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Requirements returns the staffing plan, folding the legacy flat counts into a single role.
func (s Site) Requirements() []StaffingSlot {
	if len(s.StaffingSlots) > 0 {
		return s.StaffingSlots
	}
	if s.DaySlots == 0 && s.NightSlots == 0 {
		return nil
	}
	return []StaffingSlot{{
		Role:        DefaultRole,
		DaySlots:    s.DaySlots,
		NightSlots:  s.NightSlots,
		RatePerSlot: s.PayRate,
		RateType:    RateTypeMonthly,
	}}
}

// Capacity is the number of regular slots for a shift type across all roles.
func (s Site) Capacity(shiftType shift.ShiftType) int {
	total := 0
	for _, req := range s.Requirements() {
		total += req.Count(shiftType)
	}
	return total
}

// RoleRate returns the configured rate of a role, zero when the role is unknown.
func (s Site) RoleRate(role string) decimal.Decimal {
	for _, req := range s.Requirements() {
		if req.Role == role {
			return req.RatePerSlot
		}
	}
	return decimal.Zero
}

// AllocatedAmount is the monthly budget implied by the staffing plan.
// Per-shift rates are multiplied by the days of the month.
func (s Site) AllocatedAmount(daysInMonth int) decimal.Decimal {
	total := decimal.Zero
	for _, req := range s.Requirements() {
		slots := decimal.NewFromInt(int64(req.DaySlots + req.NightSlots))
		amount := req.RatePerSlot.Mul(slots)
		if req.RateType == RateTypePerShift {
			amount = amount.Mul(decimal.NewFromInt(int64(daysInMonth)))
		}
		total = total.Add(amount)
	}
	return total
}
