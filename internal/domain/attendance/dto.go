package attendance

import (
	"strings"
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// MARKING
// ========================================

type MarkAttendanceRequest struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	SiteID    string  `json:"site_id"`
	GuardID   string  `json:"guard_id"`
	ShiftType string  `json:"shift_type"`
	IsPresent *bool   `json:"is_present"`
	Notes     *string `json:"notes,omitempty"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	validateSiteDateShift(&errs, r.SiteID, r.Date, r.ShiftType)
	errs.Required("guard_id", r.GuardID)
	if r.IsPresent == nil {
		errs.Add("is_present", "is_present is required")
	}

	return errs.OrNil()
}

type BulkMarkRequest struct {
	Date      string   `json:"date"`
	SiteID    string   `json:"site_id"`
	ShiftType string   `json:"shift_type"`
	GuardIDs  []string `json:"guard_ids"`
	IsPresent *bool    `json:"is_present"`
}

func (r *BulkMarkRequest) Validate() error {
	var errs validator.ValidationErrors

	validateSiteDateShift(&errs, r.SiteID, r.Date, r.ShiftType)
	if len(r.GuardIDs) == 0 {
		errs.Add("guard_ids", "at least one guard is required")
	}
	if r.IsPresent == nil {
		errs.Add("is_present", "is_present is required")
	}

	return errs.OrNil()
}

type BulkMarkResult struct {
	GuardID string `json:"guard_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BulkMarkResponse struct {
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	Results      []BulkMarkResult `json:"results"`
}

type CopyAttendanceRequest struct {
	SiteID   string `json:"site_id"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

func (r *CopyAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	if _, ok := validator.IsValidDate(r.FromDate); !ok {
		errs.Add("from_date", "from_date must be in YYYY-MM-DD format")
	}
	if _, ok := validator.IsValidDate(r.ToDate); !ok {
		errs.Add("to_date", "to_date must be in YYYY-MM-DD format")
	}
	if r.FromDate != "" && r.FromDate == r.ToDate {
		errs.Add("to_date", "to_date must differ from from_date")
	}

	return errs.OrNil()
}

type SkippedGuard struct {
	GuardID   string `json:"guard_id"`
	ShiftType string `json:"shift_type"`
	Reason    string `json:"reason"`
}

type CopyAttendanceResponse struct {
	Copied   int            `json:"copied"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Details  []SkippedGuard `json:"skipped_guards,omitempty"`
	Failures []SkippedGuard `json:"failed_guards,omitempty"`
}

type ResetAttendanceRequest struct {
	SiteID string `json:"site_id"`
	Date   string `json:"date"`
}

func (r *ResetAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	return errs.OrNil()
}

type ResetAttendanceResponse struct {
	DeletedRecords int64 `json:"deleted_records"`
	ClearedSlots   int64 `json:"cleared_slots"`
}

type UpdateStatusRequest struct {
	ID                 string  `json:"-"`
	Status             string  `json:"status"`
	ReplacementGuardID *string `json:"replacement_guard_id,omitempty"`
	ReassignedSiteID   *string `json:"reassigned_site_id,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	switch Status(r.Status) {
	case StatusReplaced:
		if r.ReplacementGuardID == nil || validator.IsEmpty(*r.ReplacementGuardID) {
			errs.Add("replacement_guard_id", ErrReplacementRequired.Error())
		}
	case StatusReassigned:
		if r.ReassignedSiteID == nil || validator.IsEmpty(*r.ReassignedSiteID) {
			errs.Add("reassigned_site_id", ErrReassignedSiteRequired.Error())
		}
	default:
		errs.Add("status", "status must be one of: replaced, reassigned")
	}

	return errs.OrNil()
}

// ========================================
// QUERIES
// ========================================

type AttendanceFilter struct {
	SiteID    *string `json:"site_id,omitempty"`
	GuardID   *string `json:"guard_id,omitempty"`
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	ShiftType *string `json:"shift_type,omitempty"`
	Status    *string `json:"status,omitempty"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value == nil {
			continue
		}
		if _, ok := validator.IsValidDate(*value); !ok {
			errs.Add(field, field+" must be in YYYY-MM-DD format")
		}
	}
	if f.ShiftType != nil && !validator.IsInSlice(*f.ShiftType, shift.ShiftTypeValues) {
		errs.Add("shift_type", "shift_type must be one of: "+strings.Join(shift.ShiftTypeValues, ", "))
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if f.Date == nil && f.StartDate == nil && f.SiteID == nil && f.GuardID == nil {
		errs.Add("date", "at least one of date, start_date, site_id or guard_id is required")
	}

	return errs.OrNil()
}

// ToQuery converts a validated filter.
func (f AttendanceFilter) ToQuery() RecordQuery {
	q := RecordQuery{SiteID: f.SiteID, GuardID: f.GuardID}
	if f.Date != nil {
		d, _ := time.Parse("2006-01-02", *f.Date)
		q.Date = &d
	}
	if f.StartDate != nil {
		d, _ := time.Parse("2006-01-02", *f.StartDate)
		q.StartDate = &d
	}
	if f.EndDate != nil {
		d, _ := time.Parse("2006-01-02", *f.EndDate)
		q.EndDate = &d
	}
	if f.ShiftType != nil {
		st := shift.ShiftType(*f.ShiftType)
		q.ShiftType = &st
	}
	if f.Status != nil {
		s := Status(*f.Status)
		q.Status = &s
	}
	return q
}

type AttendanceResponse struct {
	ID                 string           `json:"id"`
	Date               string           `json:"date"`
	SiteID             string           `json:"site_id"`
	SiteName           *string          `json:"site_name,omitempty"`
	GuardID            string           `json:"guard_id"`
	GuardName          *string          `json:"guard_name,omitempty"`
	ShiftType          string           `json:"shift_type"`
	ShiftID            *string          `json:"shift_id,omitempty"`
	SlotID             *string          `json:"slot_id,omitempty"`
	Status             string           `json:"status"`
	ReplacementGuardID *string          `json:"replacement_guard_id,omitempty"`
	ReassignedSiteID   *string          `json:"reassigned_site_id,omitempty"`
	ApprovedBy         *string          `json:"approved_by,omitempty"`
	ApprovedAt         *string          `json:"approved_at,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	IsTemporary        bool             `json:"is_temporary"`
	PayRate            *decimal.Decimal `json:"pay_rate,omitempty"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
}

func ToResponse(r AttendanceRecord) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                 r.ID,
		Date:               r.Date.Format("2006-01-02"),
		SiteID:             r.SiteID,
		SiteName:           r.SiteName,
		GuardID:            r.GuardID,
		GuardName:          r.GuardName,
		ShiftType:          string(r.ShiftType),
		ShiftID:            r.ShiftID,
		SlotID:             r.SlotID,
		Status:             string(r.Status),
		ReplacementGuardID: r.ReplacementGuardID,
		ReassignedSiteID:   r.ReassignedSiteID,
		ApprovedBy:         r.ApprovedBy,
		Notes:              r.Notes,
		IsTemporary:        r.IsTemporary,
		PayRate:            r.PayRate,
		CreatedAt:          r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:          r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.ApprovedAt != nil {
		at := r.ApprovedAt.Format("2006-01-02 15:04:05")
		resp.ApprovedAt = &at
	}
	return resp
}

func validateSiteDateShift(errs *validator.ValidationErrors, siteID, date, shiftType string) {
	errs.Required("site_id", siteID)
	if _, ok := validator.IsValidDate(date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if !validator.IsInSlice(shiftType, shift.ShiftTypeValues) {
		errs.Add("shift_type", "shift_type must be one of: "+strings.Join(shift.ShiftTypeValues, ", "))
	}
}
