package earnings

import (
	"github.com/guardline/roster-backend/internal/pkg/utils"
	"github.com/guardline/roster-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GuardEarningsRequest struct {
	GuardID string `json:"guard_id"`
	Month   string `json:"month"` // YYYY-MM
}

func (r *GuardEarningsRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("guard_id", r.GuardID)
	validateMonth(&errs, r.Month)
	return errs.OrNil()
}

type SiteEarningsRequest struct {
	SiteID string `json:"site_id"`
	Month  string `json:"month"` // YYYY-MM
}

func (r *SiteEarningsRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("site_id", r.SiteID)
	validateMonth(&errs, r.Month)
	return errs.OrNil()
}

func ValidateMonth(month string) error {
	var errs validator.ValidationErrors
	validateMonth(&errs, month)
	return errs.OrNil()
}

func validateMonth(errs *validator.ValidationErrors, month string) {
	if month == "" {
		errs.Add("month", ErrMonthRequired.Error())
		return
	}
	if _, ok := validator.IsValidMonth(month); !ok {
		errs.Add("month", "month must be in YYYY-MM format")
	}
}

type GuardEarningsResponse struct {
	GuardID         string          `json:"guard_id"`
	GuardName       string          `json:"guard_name"`
	Month           string          `json:"month"`
	DaysInMonth     int             `json:"days_in_month"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	PresentShifts   int             `json:"present_shifts"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetAmount       decimal.Decimal `json:"net_amount"`
}

func ToGuardResponse(e GuardMonthlyEarnings) GuardEarningsResponse {
	return GuardEarningsResponse{
		GuardID:         e.GuardID,
		GuardName:       e.GuardName,
		Month:           utils.FormatMonth(e.Month),
		DaysInMonth:     e.DaysInMonth,
		DailyRate:       e.DailyRate,
		PresentShifts:   e.PresentShifts,
		BaseSalary:      e.BaseSalary,
		TotalBonuses:    e.TotalBonuses,
		TotalDeductions: e.TotalDeductions,
		NetAmount:       e.NetAmount,
	}
}

type SiteEarningsResponse struct {
	SiteID          string          `json:"site_id"`
	SiteName        string          `json:"site_name"`
	Month           string          `json:"month"`
	TotalShifts     int             `json:"total_shifts"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	GuardCosts      decimal.Decimal `json:"guard_costs"`
	NetEarnings     decimal.Decimal `json:"net_earnings"`
}

func ToSiteResponse(e SiteMonthlyEarnings) SiteEarningsResponse {
	return SiteEarningsResponse{
		SiteID:          e.SiteID,
		SiteName:        e.SiteName,
		Month:           utils.FormatMonth(e.Month),
		TotalShifts:     e.TotalShifts,
		AllocatedAmount: e.AllocatedAmount,
		GuardCosts:      e.GuardCosts,
		NetEarnings:     e.NetEarnings,
	}
}
