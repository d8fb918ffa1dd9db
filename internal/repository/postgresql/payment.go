package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type paymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepositoryImpl{db: db}
}

const paymentSelect = `
	SELECT p.id, p.guard_id, p.date, p.amount, p.type, p.month, p.note, p.created_at, p.updated_at, g.name
	FROM payment_records p
	LEFT JOIN guards g ON g.id = p.guard_id
`

func scanPayment(row pgx.Row) (payment.PaymentRecord, error) {
	var p payment.PaymentRecord
	err := row.Scan(&p.ID, &p.GuardID, &p.Date, &p.Amount, &p.Type, &p.Month, &p.Note, &p.CreatedAt, &p.UpdatedAt, &p.GuardName)
	return p, err
}

func (r *paymentRepositoryImpl) Create(ctx context.Context, p payment.PaymentRecord) (payment.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO payment_records (guard_id, date, amount, type, month, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.GuardID, p.Date, p.Amount, p.Type, p.Month, p.Note).Scan(&id)
	if err != nil {
		return payment.PaymentRecord{}, fmt.Errorf("failed to create payment record: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id string) (payment.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return payment.PaymentRecord{}, payment.ErrPaymentNotFound
		}
		return payment.PaymentRecord{}, fmt.Errorf("failed to get payment record: %w", err)
	}
	return p, nil
}

func (r *paymentRepositoryImpl) List(ctx context.Context, query payment.PaymentQuery) ([]payment.PaymentRecord, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if query.GuardID != nil {
		add("p.guard_id::text = $%d", *query.GuardID)
	}
	if query.Month != nil {
		add("p.month = $%d", *query.Month)
	}
	if query.Type != nil {
		add("p.type = $%d", string(*query.Type))
	}
	if query.StartDate != nil {
		add("p.date >= $%d", *query.StartDate)
	}
	if query.EndDate != nil {
		add("p.date <= $%d", *query.EndDate)
	}

	rows, err := q.Query(ctx, paymentSelect+" WHERE "+strings.Join(conditions, " AND ")+" ORDER BY p.date, p.created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}
	defer rows.Close()

	records := []payment.PaymentRecord{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment record: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (r *paymentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payment_records WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return payment.ErrPaymentNotFound
		}
		return fmt.Errorf("failed to delete payment record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}
