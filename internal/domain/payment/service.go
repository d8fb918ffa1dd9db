package payment

import "context"

type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (PaymentResponse, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) error
}
