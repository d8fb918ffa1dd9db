package site

import (
	"fmt"
	"strings"

	"github.com/guardline/roster-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type StaffingSlotRequest struct {
	Role        string          `json:"role"`
	DaySlots    int             `json:"day_slots"`
	NightSlots  int             `json:"night_slots"`
	RatePerSlot decimal.Decimal `json:"rate_per_slot"`
	RateType    string          `json:"rate_type"`
}

type CreateSiteRequest struct {
	Name          string                `json:"name"`
	Address       string                `json:"address"`
	City          *string               `json:"city,omitempty"`
	ContactPhone  *string               `json:"contact_phone,omitempty"`
	StaffingSlots []StaffingSlotRequest `json:"staffing_slots"`

	// Legacy flat configuration
	DaySlots   int              `json:"day_slots"`
	NightSlots int              `json:"night_slots"`
	PayRate    *decimal.Decimal `json:"pay_rate,omitempty"`
}

func (r *CreateSiteRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("name", r.Name)
	errs.Required("address", r.Address)
	if r.ContactPhone != nil && *r.ContactPhone != "" && !validator.IsValidPhoneNumber(*r.ContactPhone) {
		errs.Add("contact_phone", "contact_phone is not a valid phone number")
	}
	validateStaffing(&errs, r.StaffingSlots, r.DaySlots, r.NightSlots, r.PayRate)

	return errs.OrNil()
}

type UpdateSiteRequest struct {
	ID string `json:"-"`
	CreateSiteRequest
}

func (r *UpdateSiteRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("id", r.ID)
	if err := r.CreateSiteRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	return errs.OrNil()
}

func validateStaffing(errs *validator.ValidationErrors, slots []StaffingSlotRequest, daySlots, nightSlots int, payRate *decimal.Decimal) {
	if daySlots < 0 {
		errs.Add("day_slots", "day_slots must be a non-negative number")
	}
	if nightSlots < 0 {
		errs.Add("night_slots", "night_slots must be a non-negative number")
	}
	if payRate != nil && payRate.IsNegative() {
		errs.Add("pay_rate", "pay_rate must be a non-negative amount")
	}

	roles := make(map[string]struct{}, len(slots))
	for i, s := range slots {
		field := fmt.Sprintf("staffing_slots[%d]", i)
		if validator.IsEmpty(s.Role) {
			errs.Add(field+".role", "role is required")
		}
		if _, dup := roles[s.Role]; dup {
			errs.Add(field+".role", "role must be unique per site")
		}
		roles[s.Role] = struct{}{}
		if s.DaySlots < 0 {
			errs.Add(field+".day_slots", "day_slots must be a non-negative number")
		}
		if s.NightSlots < 0 {
			errs.Add(field+".night_slots", "night_slots must be a non-negative number")
		}
		if s.RatePerSlot.IsNegative() {
			errs.Add(field+".rate_per_slot", "rate_per_slot must be a non-negative amount")
		}
		if !validator.IsInSlice(s.RateType, RateTypeValues) {
			errs.Add(field+".rate_type", "rate_type must be one of: "+strings.Join(RateTypeValues, ", "))
		}
	}
}

// ToEntity maps the request onto a Site without ID or timestamps.
func (r CreateSiteRequest) ToEntity() Site {
	s := Site{
		Name:         strings.TrimSpace(r.Name),
		Address:      strings.TrimSpace(r.Address),
		City:         r.City,
		ContactPhone: r.ContactPhone,
		DaySlots:     r.DaySlots,
		NightSlots:   r.NightSlots,
		PayRate:      decimal.Zero,
	}
	if r.PayRate != nil {
		s.PayRate = *r.PayRate
	}
	for _, slot := range r.StaffingSlots {
		s.StaffingSlots = append(s.StaffingSlots, StaffingSlot{
			Role:        strings.TrimSpace(slot.Role),
			DaySlots:    slot.DaySlots,
			NightSlots:  slot.NightSlots,
			RatePerSlot: slot.RatePerSlot,
			RateType:    RateType(slot.RateType),
		})
	}
	return s
}

type StaffingSlotResponse struct {
	Role        string          `json:"role"`
	DaySlots    int             `json:"day_slots"`
	NightSlots  int             `json:"night_slots"`
	RatePerSlot decimal.Decimal `json:"rate_per_slot"`
	RateType    string          `json:"rate_type"`
}

type SiteResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Address       string                 `json:"address"`
	City          *string                `json:"city,omitempty"`
	ContactPhone  *string                `json:"contact_phone,omitempty"`
	StaffingSlots []StaffingSlotResponse `json:"staffing_slots"`
	DayCapacity   int                    `json:"day_capacity"`
	NightCapacity int                    `json:"night_capacity"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

type ListSiteResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Sites      []SiteResponse `json:"sites"`
}

type SiteFilter struct {
	Name *string `json:"name,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // name, created_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *SiteFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		errs.Add("limit", "limit must not exceed 200")
	}

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, []string{"name", "created_at"}) {
			errs.Add("sort_by", "sort_by must be one of: name, created_at")
		}
	} else {
		f.SortBy = "name"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "asc"
	}

	return errs.OrNil()
}

func ToResponse(s Site) SiteResponse {
	resp := SiteResponse{
		ID:            s.ID,
		Name:          s.Name,
		Address:       s.Address,
		City:          s.City,
		ContactPhone:  s.ContactPhone,
		StaffingSlots: []StaffingSlotResponse{},
		CreatedAt:     s.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, req := range s.Requirements() {
		resp.StaffingSlots = append(resp.StaffingSlots, StaffingSlotResponse{
			Role:        req.Role,
			DaySlots:    req.DaySlots,
			NightSlots:  req.NightSlots,
			RatePerSlot: req.RatePerSlot,
			RateType:    string(req.RateType),
		})
		resp.DayCapacity += req.DaySlots
		resp.NightCapacity += req.NightSlots
	}
	return resp
}
