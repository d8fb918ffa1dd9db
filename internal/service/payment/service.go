package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
)

type PaymentServiceImpl struct {
	payment.PaymentRepository
	guardRepo guard.GuardRepository
}

func NewPaymentService(paymentRepo payment.PaymentRepository, guardRepo guard.GuardRepository) payment.PaymentService {
	return &PaymentServiceImpl{PaymentRepository: paymentRepo, guardRepo: guardRepo}
}

// CreatePayment implements payment.PaymentService.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (payment.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.PaymentResponse{}, err
	}

	if _, err := s.guardRepo.GetByID(ctx, req.GuardID); err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return payment.PaymentResponse{}, err
		}
		return payment.PaymentResponse{}, fmt.Errorf("failed to get guard: %w", err)
	}

	created, err := s.PaymentRepository.Create(ctx, req.ToEntity())
	if err != nil {
		return payment.PaymentResponse{}, fmt.Errorf("failed to create payment record: %w", err)
	}
	return payment.ToResponse(created), nil
}

// GetPayment implements payment.PaymentService.
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, id string) (payment.PaymentResponse, error) {
	found, err := s.PaymentRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return payment.PaymentResponse{}, err
		}
		return payment.PaymentResponse{}, fmt.Errorf("failed to get payment record: %w", err)
	}
	return payment.ToResponse(found), nil
}

// ListPayments implements payment.PaymentService.
func (s *PaymentServiceImpl) ListPayments(ctx context.Context, filter payment.PaymentFilter) ([]payment.PaymentResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.PaymentRepository.List(ctx, filter.ToQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}

	responses := make([]payment.PaymentResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, payment.ToResponse(r))
	}
	return responses, nil
}

// DeletePayment implements payment.PaymentService.
func (s *PaymentServiceImpl) DeletePayment(ctx context.Context, id string) error {
	if err := s.PaymentRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete payment record: %w", err)
	}
	return nil
}
