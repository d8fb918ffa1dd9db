package memory

import (
	"context"
	"sort"

	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/pkg/utils"
)

type paymentRepositoryImpl struct {
	*Store
}

func NewPaymentRepository(store *Store) payment.PaymentRepository {
	return &paymentRepositoryImpl{Store: store}
}

func (r *paymentRepositoryImpl) Create(ctx context.Context, p payment.PaymentRecord) (payment.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	p.ID = newID()
	p.Date = utils.DateOnly(p.Date)
	p.CreatedAt = now
	p.UpdatedAt = now
	p.GuardName = nil
	r.payments[p.ID] = p

	p.GuardName = r.guardName(p.GuardID)
	return p, nil
}

func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id string) (payment.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return payment.PaymentRecord{}, payment.ErrPaymentNotFound
	}
	p.GuardName = r.guardName(p.GuardID)
	return p, nil
}

func (r *paymentRepositoryImpl) List(ctx context.Context, q payment.PaymentQuery) ([]payment.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []payment.PaymentRecord{}
	for _, p := range r.payments {
		switch {
		case q.GuardID != nil && p.GuardID != *q.GuardID,
			q.Month != nil && p.Month != *q.Month,
			q.Type != nil && p.Type != *q.Type,
			q.StartDate != nil && p.Date.Before(utils.DateOnly(*q.StartDate)),
			q.EndDate != nil && p.Date.After(utils.DateOnly(*q.EndDate)):
			continue
		}
		p.GuardName = r.guardName(p.GuardID)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *paymentRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[id]; !ok {
		return payment.ErrPaymentNotFound
	}
	delete(r.payments, id)
	return nil
}
