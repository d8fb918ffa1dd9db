package payment

import (
	"strings"
	"time"

	"github.com/guardline/roster-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	GuardID string          `json:"guard_id"`
	Date    string          `json:"date"` // YYYY-MM-DD
	Amount  decimal.Decimal `json:"amount"`
	Type    string          `json:"type"`
	Month   string          `json:"month,omitempty"` // YYYY-MM, defaults to the month of Date
	Note    *string         `json:"note,omitempty"`
}

func (r *CreatePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("guard_id", r.GuardID)

	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	if !validator.IsPositive(r.Amount) {
		errs.Add("amount", "amount must be greater than 0")
	}

	if !validator.IsInSlice(r.Type, PaymentTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(PaymentTypeValues, ", "))
	}

	if r.Month == "" && ok {
		r.Month = date.Format("2006-01")
	} else if r.Month != "" {
		if _, valid := validator.IsValidMonth(r.Month); !valid {
			errs.Add("month", "month must be in YYYY-MM format")
		}
	}

	if r.Note != nil {
		note := strings.TrimSpace(*r.Note)
		r.Note = &note
	}

	return errs.OrNil()
}

// ToEntity converts a validated request.
func (r CreatePaymentRequest) ToEntity() PaymentRecord {
	date, _ := time.Parse("2006-01-02", r.Date)
	return PaymentRecord{
		GuardID: r.GuardID,
		Date:    date,
		Amount:  r.Amount,
		Type:    PaymentType(r.Type),
		Month:   r.Month,
		Note:    r.Note,
	}
}

type PaymentFilter struct {
	GuardID *string `json:"guard_id,omitempty"`
	Month   *string `json:"month,omitempty"`
	Type    *string `json:"type,omitempty"`
}

func (f *PaymentFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil {
		if _, ok := validator.IsValidMonth(*f.Month); !ok {
			errs.Add("month", "month must be in YYYY-MM format")
		}
	}
	if f.Type != nil && !validator.IsInSlice(*f.Type, PaymentTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(PaymentTypeValues, ", "))
	}

	return errs.OrNil()
}

func (f PaymentFilter) ToQuery() PaymentQuery {
	q := PaymentQuery{GuardID: f.GuardID, Month: f.Month}
	if f.Type != nil {
		t := PaymentType(*f.Type)
		q.Type = &t
	}
	return q
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	GuardID   string          `json:"guard_id"`
	GuardName *string         `json:"guard_name,omitempty"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Month     string          `json:"month"`
	Note      *string         `json:"note,omitempty"`
	CreatedAt string          `json:"created_at"`
}

func ToResponse(p PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		GuardID:   p.GuardID,
		GuardName: p.GuardName,
		Date:      p.Date.Format("2006-01-02"),
		Amount:    p.Amount,
		Type:      string(p.Type),
		Month:     p.Month,
		Note:      p.Note,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
