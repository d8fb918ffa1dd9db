package earnings

import (
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision of every amount leaving this package.
const MoneyPlaces = 2

// GuardMonthlyEarnings - derived payout of one guard for one month
type GuardMonthlyEarnings struct {
	GuardID         string
	GuardName       string
	Month           time.Time
	DaysInMonth     int
	DailyRate       decimal.Decimal
	PresentShifts   int
	BaseSalary      decimal.Decimal
	TotalBonuses    decimal.Decimal
	TotalDeductions decimal.Decimal
	NetAmount       decimal.Decimal
}

// SiteMonthlyEarnings - derived budget against guard costs of one site for one month
type SiteMonthlyEarnings struct {
	SiteID          string
	SiteName        string
	Month           time.Time
	TotalShifts     int
	AllocatedAmount decimal.Decimal
	GuardCosts      decimal.Decimal
	NetEarnings     decimal.Decimal
}

// ComputeGuardEarnings folds a guard's present records and payments for the month containing month.
// Records and payments belonging to other guards or falling outside the month are ignored.
// A shift on a temporary slot pays the slot's own rate instead of the daily rate.
func ComputeGuardEarnings(g guard.Guard, month time.Time, records []attendance.AttendanceRecord, payments []payment.PaymentRecord) GuardMonthlyEarnings {
	start, end := utils.MonthBounds(month)
	dailyRate := g.ShiftRate(start)

	present := 0
	base := decimal.Zero
	for _, r := range records {
		if r.GuardID != g.ID || !r.IsPresent() || !inRange(r.Date, start, end) {
			continue
		}
		present++
		base = base.Add(shiftCost(r, dailyRate))
	}

	bonuses, deductions := decimal.Zero, decimal.Zero
	for _, p := range payments {
		if p.GuardID != g.ID || !inRange(p.Date, start, end) {
			continue
		}
		switch p.Type {
		case payment.PaymentTypeBonus:
			bonuses = bonuses.Add(p.Amount)
		case payment.PaymentTypeDeduction:
			deductions = deductions.Add(p.Amount)
		}
	}

	net := base.Add(bonuses).Sub(deductions)

	return GuardMonthlyEarnings{
		GuardID:         g.ID,
		GuardName:       g.Name,
		Month:           start,
		DaysInMonth:     utils.DaysInMonth(start),
		DailyRate:       dailyRate.Round(MoneyPlaces),
		PresentShifts:   present,
		BaseSalary:      base.Round(MoneyPlaces),
		TotalBonuses:    bonuses.Round(MoneyPlaces),
		TotalDeductions: deductions.Round(MoneyPlaces),
		NetAmount:       net.Round(MoneyPlaces),
	}
}

// ComputeSiteEarnings folds the site's present records for the month containing month.
// A record carrying its own pay rate (temporary slots) costs that rate, otherwise the guard's
// daily rate. Guards missing from guards cost nothing.
func ComputeSiteEarnings(s site.Site, month time.Time, records []attendance.AttendanceRecord, guards map[string]guard.Guard) SiteMonthlyEarnings {
	start, end := utils.MonthBounds(month)
	days := utils.DaysInMonth(start)

	shifts := 0
	costs := decimal.Zero
	for _, r := range records {
		if r.SiteID != s.ID || !r.IsPresent() || !inRange(r.Date, start, end) {
			continue
		}
		shifts++
		if r.PayRate != nil && !r.PayRate.IsZero() {
			costs = costs.Add(*r.PayRate)
			continue
		}
		if g, ok := guards[r.GuardID]; ok {
			costs = costs.Add(g.ShiftRate(start))
		}
	}

	allocated := s.AllocatedAmount(days)

	return SiteMonthlyEarnings{
		SiteID:          s.ID,
		SiteName:        s.Name,
		Month:           start,
		TotalShifts:     shifts,
		AllocatedAmount: allocated.Round(MoneyPlaces),
		GuardCosts:      costs.Round(MoneyPlaces),
		NetEarnings:     allocated.Sub(costs).Round(MoneyPlaces),
	}
}

// shiftCost is what one present record pays out: its own rate when set, dailyRate otherwise.
func shiftCost(r attendance.AttendanceRecord, dailyRate decimal.Decimal) decimal.Decimal {
	if r.PayRate != nil && !r.PayRate.IsZero() {
		return *r.PayRate
	}
	return dailyRate
}

func inRange(d, start, end time.Time) bool {
	day := utils.DateOnly(d)
	return !day.Before(start) && !day.After(end)
}
