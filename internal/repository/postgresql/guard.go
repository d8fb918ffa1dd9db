package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type guardRepositoryImpl struct {
	db *database.DB
}

func NewGuardRepository(db *database.DB) guard.GuardRepository {
	return &guardRepositoryImpl{db: db}
}

const guardColumns = `id, name, badge_number, status, type, pay_rate, phone, email, id_number, address, created_at, updated_at`

func scanGuard(row pgx.Row) (guard.Guard, error) {
	var g guard.Guard
	err := row.Scan(
		&g.ID, &g.Name, &g.BadgeNumber, &g.Status, &g.Type, &g.PayRate,
		&g.Phone, &g.Email, &g.IDNumber, &g.Address, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

func (r *guardRepositoryImpl) Create(ctx context.Context, g guard.Guard) (guard.Guard, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO guards (name, badge_number, status, type, pay_rate, phone, email, id_number, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + guardColumns

	created, err := scanGuard(q.QueryRow(ctx, query,
		g.Name, g.BadgeNumber, g.Status, g.Type, g.PayRate, g.Phone, g.Email, g.IDNumber, g.Address,
	))
	if err != nil {
		if violates(err, "uk_guards_badge_number") {
			return guard.Guard{}, guard.ErrBadgeNumberExists
		}
		return guard.Guard{}, fmt.Errorf("failed to create guard: %w", err)
	}
	return created, nil
}

func (r *guardRepositoryImpl) GetByID(ctx context.Context, id string) (guard.Guard, error) {
	q := GetQuerier(ctx, r.db)

	g, err := scanGuard(q.QueryRow(ctx, `SELECT `+guardColumns+` FROM guards WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return guard.Guard{}, guard.ErrGuardNotFound
		}
		return guard.Guard{}, fmt.Errorf("failed to get guard: %w", err)
	}
	return g, nil
}

// GetByIDs skips unknown IDs; callers compare lengths to detect them.
func (r *guardRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]guard.Guard, error) {
	if len(ids) == 0 {
		return []guard.Guard{}, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+guardColumns+` FROM guards WHERE id::text = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get guards: %w", err)
	}
	defer rows.Close()

	guards := []guard.Guard{}
	for rows.Next() {
		g, err := scanGuard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guard: %w", err)
		}
		guards = append(guards, g)
	}
	return guards, rows.Err()
}

func (r *guardRepositoryImpl) List(ctx context.Context, filter guard.GuardFilter) ([]guard.Guard, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	if filter.Search != nil && *filter.Search != "" {
		args = append(args, "%"+*filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR badge_number ILIKE $%d)", len(args), len(args)))
	}
	if filter.Status != nil && *filter.Status != "" {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != nil && *filter.Type != "" {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM guards WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count guards: %w", err)
	}

	validSortColumns := map[string]string{
		"name":         "LOWER(name)",
		"badge_number": "badge_number",
		"created_at":   "created_at",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "LOWER(name)"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM guards WHERE %s ORDER BY %s %s, id%s`,
		guardColumns, whereClause, sortColumn, sortOrder, limitClause(filter.Page, filter.Limit))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guards: %w", err)
	}
	defer rows.Close()

	guards := []guard.Guard{}
	for rows.Next() {
		g, err := scanGuard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan guard: %w", err)
		}
		guards = append(guards, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate guards: %w", err)
	}
	return guards, total, nil
}

func (r *guardRepositoryImpl) ExistsByBadgeNumber(ctx context.Context, badgeNumber string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM guards WHERE badge_number = $1)`
	args := []interface{}{badgeNumber}
	if excludeID != nil {
		query = `SELECT EXISTS (SELECT 1 FROM guards WHERE badge_number = $1 AND id::text <> $2)`
		args = append(args, *excludeID)
	}

	var exists bool
	if err := q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check badge number: %w", err)
	}
	return exists, nil
}

func (r *guardRepositoryImpl) Update(ctx context.Context, g guard.Guard) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE guards
		SET name = $2, badge_number = $3, status = $4, type = $5, pay_rate = $6,
			phone = $7, email = $8, id_number = $9, address = $10, updated_at = NOW()
		WHERE id = $1
	`, g.ID, g.Name, g.BadgeNumber, g.Status, g.Type, g.PayRate, g.Phone, g.Email, g.IDNumber, g.Address)
	if err != nil {
		if violates(err, "uk_guards_badge_number") {
			return guard.ErrBadgeNumberExists
		}
		if notFound(err) {
			return guard.ErrGuardNotFound
		}
		return fmt.Errorf("failed to update guard: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrGuardNotFound
	}
	return nil
}

// Delete refuses while the guard holds standing shifts, assigned slots or present records.
func (r *guardRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var hasShifts, onBoard bool
	err := q.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM shifts WHERE guard_id = $1),
			EXISTS (SELECT 1 FROM daily_attendance_slots WHERE assigned_guard_id = $1)
				OR EXISTS (SELECT 1 FROM attendance_records WHERE guard_id = $1 AND status = 'present')
	`, id).Scan(&hasShifts, &onBoard)
	if err != nil {
		if notFound(err) {
			return guard.ErrGuardNotFound
		}
		return fmt.Errorf("failed to check guard usage: %w", err)
	}
	if hasShifts {
		return guard.ErrGuardHasShifts
	}
	if onBoard {
		return guard.ErrGuardOnBoard
	}

	tag, err := q.Exec(ctx, `DELETE FROM guards WHERE id = $1`, id)
	if err != nil {
		if restricted(err) {
			return guard.ErrGuardOnBoard
		}
		return fmt.Errorf("failed to delete guard: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrGuardNotFound
	}
	return nil
}
