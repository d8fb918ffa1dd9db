package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType enum
type PaymentType string

const (
	PaymentTypeBonus     PaymentType = "bonus"
	PaymentTypeDeduction PaymentType = "deduction"
)

var PaymentTypeValues = []string{
	string(PaymentTypeBonus),
	string(PaymentTypeDeduction),
}

// PaymentRecord - one-off bonus or deduction applied to a guard's monthly earnings
type PaymentRecord struct {
	ID        string
	GuardID   string
	Date      time.Time
	Amount    decimal.Decimal
	Type      PaymentType
	Month     string // YYYY-MM
	Note      *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	GuardName *string
}

// Signed returns the amount as it affects net earnings.
func (p PaymentRecord) Signed() decimal.Decimal {
	if p.Type == PaymentTypeDeduction {
		return p.Amount.Neg()
	}
	return p.Amount
}
