package guard

import (
	"strings"
	"time"

	"github.com/guardline/roster-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateGuardRequest struct {
	Name        string          `json:"name"`
	BadgeNumber string          `json:"badge_number"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	PayRate     decimal.Decimal `json:"pay_rate"`
	Phone       *string         `json:"phone,omitempty"`
	Email       *string         `json:"email,omitempty"`
	IDNumber    *string         `json:"id_number,omitempty"`
	Address     *string         `json:"address,omitempty"`
}

func (r *CreateGuardRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("name", r.Name)
	r.BadgeNumber = strings.ToUpper(strings.TrimSpace(r.BadgeNumber))
	if validator.IsEmpty(r.BadgeNumber) {
		errs.Add("badge_number", "badge_number is required")
	} else if !validator.IsValidBadgeNumber(r.BadgeNumber) {
		errs.Add("badge_number", "badge_number must be 2-20 characters of A-Z, 0-9 or -")
	}

	if r.Status == "" {
		r.Status = string(StatusActive)
	}
	if !validator.IsInSlice(r.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if r.Type == "" {
		r.Type = string(TypePermanent)
	}
	if !validator.IsInSlice(r.Type, TypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(TypeValues, ", "))
	}

	if r.PayRate.IsNegative() {
		errs.Add("pay_rate", "pay_rate must be a non-negative amount")
	}
	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "phone is not a valid phone number")
	}
	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(*r.Email) {
		errs.Add("email", "email is not a valid email address")
	}

	return errs.OrNil()
}

func (r CreateGuardRequest) ToEntity() Guard {
	return Guard{
		Name:        strings.TrimSpace(r.Name),
		BadgeNumber: r.BadgeNumber,
		Status:      Status(r.Status),
		Type:        Type(r.Type),
		PayRate:     r.PayRate,
		Phone:       r.Phone,
		Email:       r.Email,
		IDNumber:    r.IDNumber,
		Address:     r.Address,
	}
}

type UpdateGuardRequest struct {
	ID string `json:"-"`
	CreateGuardRequest
}

func (r *UpdateGuardRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("id", r.ID)
	if err := r.CreateGuardRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	return errs.OrNil()
}

type GuardResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	BadgeNumber string          `json:"badge_number"`
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	PayRate     decimal.Decimal `json:"pay_rate"`
	ShiftRate   decimal.Decimal `json:"shift_rate"`
	Phone       *string         `json:"phone,omitempty"`
	Email       *string         `json:"email,omitempty"`
	IDNumber    *string         `json:"id_number,omitempty"`
	Address     *string         `json:"address,omitempty"`
	IsSelected  bool            `json:"is_selected,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type ListGuardResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Guards     []GuardResponse `json:"guards"`
}

type GuardFilter struct {
	Search *string `json:"search,omitempty"` // name or badge number
	Status *string `json:"status,omitempty"`
	Type   *string `json:"type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // name, badge_number, created_at
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *GuardFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if f.Type != nil && !validator.IsInSlice(*f.Type, TypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(TypeValues, ", "))
	}

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
	if f.Limit > 500 {
		errs.Add("limit", "limit must not exceed 500")
	}

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, []string{"name", "badge_number", "created_at"}) {
			errs.Add("sort_by", "sort_by must be one of: name, badge_number, created_at")
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

func ToResponse(g Guard, now time.Time) GuardResponse {
	return GuardResponse{
		ID:          g.ID,
		Name:        g.Name,
		BadgeNumber: g.BadgeNumber,
		Status:      string(g.Status),
		Type:        string(g.Type),
		PayRate:     g.PayRate,
		ShiftRate:   g.ShiftRate(now).Round(2),
		Phone:       g.Phone,
		Email:       g.Email,
		IDNumber:    g.IDNumber,
		Address:     g.Address,
		CreatedAt:   g.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   g.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
