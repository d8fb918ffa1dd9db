package slot

import (
	"strings"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type SiteDateRequest struct {
	SiteID string `json:"site_id"`
	Date   string `json:"date"` // YYYY-MM-DD
}

func (r *SiteDateRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	return errs.OrNil()
}

type CopySlotsRequest struct {
	SiteID       string `json:"site_id"`
	Date         string `json:"date"`
	PreviousDate string `json:"previous_date"`
}

func (r *CopySlotsRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if _, ok := validator.IsValidDate(r.PreviousDate); !ok {
		errs.Add("previous_date", "previous_date must be in YYYY-MM-DD format")
	}
	if r.Date != "" && r.Date == r.PreviousDate {
		errs.Add("previous_date", ErrSameDateCopy.Error())
	}

	return errs.OrNil()
}

type AssignGuardRequest struct {
	SlotID  string `json:"-"`
	GuardID string `json:"guard_id"`
}

func (r *AssignGuardRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("slot_id", r.SlotID)
	errs.Required("guard_id", r.GuardID)
	return errs.OrNil()
}

type MarkSlotRequest struct {
	SlotID    string `json:"-"`
	IsPresent *bool  `json:"is_present"`
}

func (r *MarkSlotRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("slot_id", r.SlotID)
	if r.IsPresent == nil {
		errs.Add("is_present", "is_present is required")
	}
	return errs.OrNil()
}

type CreateTemporarySlotRequest struct {
	SiteID    string          `json:"site_id"`
	Date      string          `json:"date"`
	ShiftType string          `json:"shift_type"`
	RoleType  string          `json:"role_type"`
	PayRate   decimal.Decimal `json:"pay_rate"`
	GuardID   *string         `json:"guard_id,omitempty"`
}

func (r *CreateTemporarySlotRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if !validator.IsInSlice(r.ShiftType, shift.ShiftTypeValues) {
		errs.Add("shift_type", "shift_type must be one of: "+strings.Join(shift.ShiftTypeValues, ", "))
	}
	errs.Required("role_type", r.RoleType)
	if r.PayRate.IsNegative() {
		errs.Add("pay_rate", "pay_rate must be a non-negative amount")
	}

	return errs.OrNil()
}

type SlotResponse struct {
	ID              string          `json:"id"`
	SiteID          string          `json:"site_id"`
	Date            string          `json:"date"`
	ShiftType       string          `json:"shift_type"`
	RoleType        string          `json:"role_type"`
	SlotNumber      int             `json:"slot_number"`
	AssignedGuardID *string         `json:"assigned_guard_id"`
	GuardName       *string         `json:"guard_name,omitempty"`
	IsPresent       *bool           `json:"is_present"`
	IsTemporary     bool            `json:"is_temporary"`
	PayRate         decimal.Decimal `json:"pay_rate"`
	State           string          `json:"state"`
}

type ShiftSummary struct {
	Capacity  int `json:"capacity"`
	Assigned  int `json:"assigned"`
	Present   int `json:"present"`
	Absent    int `json:"absent"`
	Temporary int `json:"temporary"`
}

type BoardResponse struct {
	SiteID       string         `json:"site_id"`
	Date         string         `json:"date"`
	Day          []SlotResponse `json:"day"`
	Night        []SlotResponse `json:"night"`
	DaySummary   ShiftSummary   `json:"day_summary"`
	NightSummary ShiftSummary   `json:"night_summary"`
}

type RegenerateResponse struct {
	Board   BoardResponse  `json:"board"`
	Created int            `json:"created"`
	Excess  []SlotResponse `json:"excess"` // slots beyond the current staffing plan, left for manual cleanup
}

type SkippedGuard struct {
	GuardID string `json:"guard_id"`
	Reason  string `json:"reason"`
}

type CopySlotsResponse struct {
	Board    BoardResponse  `json:"board"`
	Copied   int            `json:"copied"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Details  []SkippedGuard `json:"skipped_guards,omitempty"`
	Failures []SkippedGuard `json:"failed_guards,omitempty"`
}

func ToResponse(s DailyAttendanceSlot) SlotResponse {
	return SlotResponse{
		ID:              s.ID,
		SiteID:          s.SiteID,
		Date:            s.Date.Format("2006-01-02"),
		ShiftType:       string(s.ShiftType),
		RoleType:        s.RoleType,
		SlotNumber:      s.SlotNumber,
		AssignedGuardID: s.AssignedGuardID,
		GuardName:       s.GuardName,
		IsPresent:       s.IsPresent,
		IsTemporary:     s.IsTemporary,
		PayRate:         s.PayRate,
		State:           string(s.State()),
	}
}

// BuildBoard splits slots by shift type and counts them against the given capacities.
func BuildBoard(siteID, date string, slots []DailyAttendanceSlot, dayCapacity, nightCapacity int) BoardResponse {
	board := BoardResponse{
		SiteID:       siteID,
		Date:         date,
		Day:          []SlotResponse{},
		Night:        []SlotResponse{},
		DaySummary:   ShiftSummary{Capacity: dayCapacity},
		NightSummary: ShiftSummary{Capacity: nightCapacity},
	}

	for _, s := range slots {
		sum := &board.DaySummary
		if s.ShiftType == shift.ShiftTypeNight {
			board.Night = append(board.Night, ToResponse(s))
			sum = &board.NightSummary
		} else {
			board.Day = append(board.Day, ToResponse(s))
		}

		if s.IsTemporary {
			sum.Temporary++
		}
		switch s.State() {
		case StateAssigned:
			sum.Assigned++
		case StatePresent:
			sum.Assigned++
			sum.Present++
		case StateAbsent:
			sum.Assigned++
			sum.Absent++
		}
	}

	return board
}
