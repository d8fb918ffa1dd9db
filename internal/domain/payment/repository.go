package payment

import (
	"context"
	"time"
)

// PaymentQuery narrows List. Zero values are not filtered on.
type PaymentQuery struct {
	GuardID   *string
	Month     *string
	Type      *PaymentType
	StartDate *time.Time
	EndDate   *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, record PaymentRecord) (PaymentRecord, error)
	GetByID(ctx context.Context, id string) (PaymentRecord, error)
	List(ctx context.Context, query PaymentQuery) ([]PaymentRecord, error)
	Delete(ctx context.Context, id string) error
}
