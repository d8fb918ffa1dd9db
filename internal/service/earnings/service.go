package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/earnings"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/pkg/export"
	"github.com/guardline/roster-backend/internal/pkg/utils"
)

type EarningsServiceImpl struct {
	guardRepo      guard.GuardRepository
	siteRepo       site.SiteRepository
	attendanceRepo attendance.AttendanceRepository
	paymentRepo    payment.PaymentRepository
}

func NewEarningsService(
	guardRepo guard.GuardRepository,
	siteRepo site.SiteRepository,
	attendanceRepo attendance.AttendanceRepository,
	paymentRepo payment.PaymentRepository,
) earnings.EarningsService {
	return &EarningsServiceImpl{
		guardRepo:      guardRepo,
		siteRepo:       siteRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
	}
}

// presentInMonth loads present records for the month, narrowed by guard or site when given.
func (s *EarningsServiceImpl) presentInMonth(ctx context.Context, month time.Time, guardID, siteID *string) ([]attendance.AttendanceRecord, error) {
	start, end := utils.MonthBounds(month)
	present := attendance.StatusPresent
	records, err := s.attendanceRepo.List(ctx, attendance.RecordQuery{
		GuardID:   guardID,
		SiteID:    siteID,
		StartDate: &start,
		EndDate:   &end,
		Status:    &present,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

func (s *EarningsServiceImpl) paymentsInMonth(ctx context.Context, month time.Time, guardID *string) ([]payment.PaymentRecord, error) {
	start, end := utils.MonthBounds(month)
	records, err := s.paymentRepo.List(ctx, payment.PaymentQuery{GuardID: guardID, StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to list payment records: %w", err)
	}
	return records, nil
}

// GetGuardEarnings implements earnings.EarningsService.
func (s *EarningsServiceImpl) GetGuardEarnings(ctx context.Context, req earnings.GuardEarningsRequest) (earnings.GuardEarningsResponse, error) {
	if err := req.Validate(); err != nil {
		return earnings.GuardEarningsResponse{}, err
	}
	month, err := utils.ParseMonth(req.Month)
	if err != nil {
		return earnings.GuardEarningsResponse{}, err
	}

	g, err := s.guardRepo.GetByID(ctx, req.GuardID)
	if err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return earnings.GuardEarningsResponse{}, err
		}
		return earnings.GuardEarningsResponse{}, fmt.Errorf("failed to get guard: %w", err)
	}

	records, err := s.presentInMonth(ctx, month, &g.ID, nil)
	if err != nil {
		return earnings.GuardEarningsResponse{}, err
	}
	payments, err := s.paymentsInMonth(ctx, month, &g.ID)
	if err != nil {
		return earnings.GuardEarningsResponse{}, err
	}

	return earnings.ToGuardResponse(earnings.ComputeGuardEarnings(g, month, records, payments)), nil
}

// GetSiteEarnings implements earnings.EarningsService.
func (s *EarningsServiceImpl) GetSiteEarnings(ctx context.Context, req earnings.SiteEarningsRequest) (earnings.SiteEarningsResponse, error) {
	if err := req.Validate(); err != nil {
		return earnings.SiteEarningsResponse{}, err
	}
	month, err := utils.ParseMonth(req.Month)
	if err != nil {
		return earnings.SiteEarningsResponse{}, err
	}

	st, err := s.siteRepo.GetByID(ctx, req.SiteID)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return earnings.SiteEarningsResponse{}, err
		}
		return earnings.SiteEarningsResponse{}, fmt.Errorf("failed to get site: %w", err)
	}

	records, err := s.presentInMonth(ctx, month, nil, &st.ID)
	if err != nil {
		return earnings.SiteEarningsResponse{}, err
	}

	guardIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seen[r.GuardID]; !ok {
			seen[r.GuardID] = struct{}{}
			guardIDs = append(guardIDs, r.GuardID)
		}
	}
	guards, err := s.guardRepo.GetByIDs(ctx, guardIDs)
	if err != nil {
		return earnings.SiteEarningsResponse{}, fmt.Errorf("failed to get guards: %w", err)
	}
	byID := make(map[string]guard.Guard, len(guards))
	for _, g := range guards {
		byID[g.ID] = g
	}

	return earnings.ToSiteResponse(earnings.ComputeSiteEarnings(st, month, records, byID)), nil
}

// ListGuardEarnings implements earnings.EarningsService.
func (s *EarningsServiceImpl) ListGuardEarnings(ctx context.Context, month string) ([]earnings.GuardEarningsResponse, error) {
	if err := earnings.ValidateMonth(month); err != nil {
		return nil, err
	}
	m, err := utils.ParseMonth(month)
	if err != nil {
		return nil, err
	}

	guards, _, err := s.guardRepo.List(ctx, guard.GuardFilter{SortBy: "name", SortOrder: "asc"})
	if err != nil {
		return nil, fmt.Errorf("failed to list guards: %w", err)
	}
	records, err := s.presentInMonth(ctx, m, nil, nil)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentsInMonth(ctx, m, nil)
	if err != nil {
		return nil, err
	}

	out := make([]earnings.GuardEarningsResponse, 0, len(guards))
	for _, g := range guards {
		out = append(out, earnings.ToGuardResponse(earnings.ComputeGuardEarnings(g, m, records, payments)))
	}
	return out, nil
}

// ExportGuardEarnings implements earnings.EarningsService.
func (s *EarningsServiceImpl) ExportGuardEarnings(ctx context.Context, month string) ([]byte, error) {
	rows, err := s.ListGuardEarnings(ctx, month)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{
		Name:    "Earnings " + month,
		Headers: []string{"Guard", "Month", "Days", "Daily Rate", "Present Shifts", "Base Salary", "Bonuses", "Deductions", "Net Amount"},
		Widths:  []float64{28, 10, 8, 14, 15, 15, 12, 12, 15},
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []interface{}{
			r.GuardName,
			r.Month,
			r.DaysInMonth,
			r.DailyRate.InexactFloat64(),
			r.PresentShifts,
			r.BaseSalary.InexactFloat64(),
			r.TotalBonuses.InexactFloat64(),
			r.TotalDeductions.InexactFloat64(),
			r.NetAmount.InexactFloat64(),
		})
	}

	data, err := export.XLSX(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", earnings.ErrExportFailed, err)
	}
	return data, nil
}
