package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type siteRepositoryImpl struct {
	db *database.DB
}

func NewSiteRepository(db *database.DB) site.SiteRepository {
	return &siteRepositoryImpl{db: db}
}

// staffingRow is the JSONB shape of one staffing slot.
type staffingRow struct {
	Role        string          `json:"role"`
	DaySlots    int             `json:"day_slots"`
	NightSlots  int             `json:"night_slots"`
	RatePerSlot decimal.Decimal `json:"rate_per_slot"`
	RateType    string          `json:"rate_type"`
}

func encodeStaffing(slots []site.StaffingSlot) ([]byte, error) {
	rows := make([]staffingRow, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, staffingRow{
			Role:        s.Role,
			DaySlots:    s.DaySlots,
			NightSlots:  s.NightSlots,
			RatePerSlot: s.RatePerSlot,
			RateType:    string(s.RateType),
		})
	}
	return json.Marshal(rows)
}

func decodeStaffing(data []byte) ([]site.StaffingSlot, error) {
	var rows []staffingRow
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
	}
	var slots []site.StaffingSlot
	for _, r := range rows {
		slots = append(slots, site.StaffingSlot{
			Role:        r.Role,
			DaySlots:    r.DaySlots,
			NightSlots:  r.NightSlots,
			RatePerSlot: r.RatePerSlot,
			RateType:    site.RateType(r.RateType),
		})
	}
	return slots, nil
}

const siteColumns = `id, name, address, city, contact_phone, staffing_slots, day_slots, night_slots, pay_rate, created_at, updated_at`

func scanSite(row pgx.Row) (site.Site, error) {
	var s site.Site
	var staffing []byte
	if err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.City, &s.ContactPhone, &staffing,
		&s.DaySlots, &s.NightSlots, &s.PayRate, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return site.Site{}, err
	}
	slots, err := decodeStaffing(staffing)
	if err != nil {
		return site.Site{}, fmt.Errorf("failed to decode staffing slots: %w", err)
	}
	s.StaffingSlots = slots
	return s, nil
}

func (r *siteRepositoryImpl) Create(ctx context.Context, s site.Site) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	staffing, err := encodeStaffing(s.StaffingSlots)
	if err != nil {
		return site.Site{}, fmt.Errorf("failed to encode staffing slots: %w", err)
	}

	query := `
		INSERT INTO sites (name, address, city, contact_phone, staffing_slots, day_slots, night_slots, pay_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + siteColumns

	created, err := scanSite(q.QueryRow(ctx, query,
		s.Name, s.Address, s.City, s.ContactPhone, staffing, s.DaySlots, s.NightSlots, s.PayRate,
	))
	if err != nil {
		if violates(err, "uk_sites_name") {
			return site.Site{}, site.ErrSiteNameExists
		}
		return site.Site{}, fmt.Errorf("failed to create site: %w", err)
	}
	return created, nil
}

func (r *siteRepositoryImpl) GetByID(ctx context.Context, id string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSite(q.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
	if err != nil {
		if notFound(err) {
			return site.Site{}, site.ErrSiteNotFound
		}
		return site.Site{}, fmt.Errorf("failed to get site: %w", err)
	}
	return s, nil
}

func (r *siteRepositoryImpl) List(ctx context.Context, filter site.SiteFilter) ([]site.Site, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	if filter.Name != nil && *filter.Name != "" {
		args = append(args, "%"+*filter.Name+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM sites WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sites: %w", err)
	}

	sortColumn := "LOWER(name)"
	if filter.SortBy == "created_at" {
		sortColumn = "created_at"
	}
	sortOrder := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM sites WHERE %s ORDER BY %s %s, id%s`,
		siteColumns, whereClause, sortColumn, sortOrder, limitClause(filter.Page, filter.Limit))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	sites := []site.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate sites: %w", err)
	}
	return sites, total, nil
}

func (r *siteRepositoryImpl) Update(ctx context.Context, s site.Site) error {
	q := GetQuerier(ctx, r.db)

	staffing, err := encodeStaffing(s.StaffingSlots)
	if err != nil {
		return fmt.Errorf("failed to encode staffing slots: %w", err)
	}

	tag, err := q.Exec(ctx, `
		UPDATE sites
		SET name = $2, address = $3, city = $4, contact_phone = $5, staffing_slots = $6,
			day_slots = $7, night_slots = $8, pay_rate = $9, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.Name, s.Address, s.City, s.ContactPhone, staffing, s.DaySlots, s.NightSlots, s.PayRate)
	if err != nil {
		if violates(err, "uk_sites_name") {
			return site.ErrSiteNameExists
		}
		if notFound(err) {
			return site.ErrSiteNotFound
		}
		return fmt.Errorf("failed to update site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}
	return nil
}

// Delete refuses while standing shifts or assigned slots still point at the site.
func (r *siteRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var inUse bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM shifts WHERE site_id = $1)
			OR EXISTS (SELECT 1 FROM daily_attendance_slots WHERE site_id = $1 AND assigned_guard_id IS NOT NULL)
	`, id).Scan(&inUse)
	if err != nil {
		if notFound(err) {
			return site.ErrSiteNotFound
		}
		return fmt.Errorf("failed to check site usage: %w", err)
	}
	if inUse {
		return site.ErrSiteInUse
	}

	tag, err := q.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}
	return nil
}
