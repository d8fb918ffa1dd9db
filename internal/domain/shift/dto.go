package shift

import (
	"strings"

	"github.com/guardline/roster-backend/internal/pkg/validator"
)

type CreateShiftRequest struct {
	SiteID  string `json:"site_id"`
	GuardID string `json:"guard_id"`
	Type    string `json:"type"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	errs.Required("guard_id", r.GuardID)
	if !validator.IsInSlice(r.Type, ShiftTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(ShiftTypeValues, ", "))
	}

	return errs.OrNil()
}

type AllocateGuardsRequest struct {
	SiteID   string   `json:"-"`
	Type     string   `json:"-"`
	GuardIDs []string `json:"guard_ids"`
}

func (r *AllocateGuardsRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("site_id", r.SiteID)
	if !validator.IsInSlice(r.Type, ShiftTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(ShiftTypeValues, ", "))
	}
	if len(r.GuardIDs) == 0 {
		errs.Add("guard_ids", ErrGuardListRequired.Error())
	}

	seen := make(map[string]struct{}, len(r.GuardIDs))
	for _, id := range r.GuardIDs {
		if validator.IsEmpty(id) {
			errs.Add("guard_ids", "guard_ids must not contain empty values")
			break
		}
		if _, dup := seen[id]; dup {
			errs.Add("guard_ids", "guard_ids must not contain duplicates")
			break
		}
		seen[id] = struct{}{}
	}

	return errs.OrNil()
}

type ShiftResponse struct {
	ID        string  `json:"id"`
	SiteID    string  `json:"site_id"`
	SiteName  *string `json:"site_name,omitempty"`
	GuardID   string  `json:"guard_id"`
	GuardName *string `json:"guard_name,omitempty"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
}

type AllocateGuardsResponse struct {
	SiteID string          `json:"site_id"`
	Type   string          `json:"type"`
	Shifts []ShiftResponse `json:"shifts"`
}

func ToResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:        s.ID,
		SiteID:    s.SiteID,
		SiteName:  s.SiteName,
		GuardID:   s.GuardID,
		GuardName: s.GuardName,
		Type:      string(s.Type),
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
