package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/guardline/roster-backend/internal/pkg/utils"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	shiftRepo shift.ShiftRepository
	slotRepo  slot.SlotRepository
	siteRepo  site.SiteRepository
	guardRepo guard.GuardRepository
	rules     *Rules
	observer  slot.BoardObserver
	now       func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo shift.ShiftRepository,
	slotRepo slot.SlotRepository,
	siteRepo site.SiteRepository,
	guardRepo guard.GuardRepository,
	rules *Rules,
	observer slot.BoardObserver,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		shiftRepo:            shiftRepo,
		slotRepo:             slotRepo,
		siteRepo:             siteRepo,
		guardRepo:            guardRepo,
		rules:                rules,
		observer:             observer,
		now:                  time.Now,
	}
}

func (s *AttendanceServiceImpl) changed(ctx context.Context, siteID string, date time.Time) {
	if s.observer != nil {
		s.observer.BoardChanged(ctx, siteID, date)
	}
}

// approverFromContext returns the token subject, nil outside an authenticated request.
func approverFromContext(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return nil
	}
	principal, err := user.FromClaims(claims)
	if err != nil {
		return nil
	}
	return &principal.ID
}

// MarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	shiftType := shift.ShiftType(req.ShiftType)

	st, err := s.siteRepo.GetByID(ctx, req.SiteID)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get site: %w", err)
	}
	if _, err := s.guardRepo.GetByID(ctx, req.GuardID); err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get guard: %w", err)
	}

	record, err := s.mark(ctx, st, req.GuardID, date, shiftType, *req.IsPresent, req.Notes)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.ToResponse(record), nil
}

// mark applies one present/absent decision. Re-marking a guard already in the requested state
// returns the stored record unchanged.
func (s *AttendanceServiceImpl) mark(ctx context.Context, st site.Site, guardID string, date time.Time, shiftType shift.ShiftType, present bool, notes *string) (attendance.AttendanceRecord, error) {
	existing, err := s.AttendanceRepository.FindOne(ctx, guardID, st.ID, date, shiftType)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to find attendance: %w", err)
	}
	want := attendance.StatusAbsent
	if present {
		want = attendance.StatusPresent
	}
	if existing != nil && existing.Status == want {
		return *existing, nil
	}

	assignedSlot, err := s.rules.SlotForGuard(ctx, guardID, st.ID, date, shiftType)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	standing, err := s.shiftRepo.FindBySiteGuardType(ctx, st.ID, guardID, shiftType)
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to find shift: %w", err)
	}
	if assignedSlot == nil && standing == nil {
		return attendance.AttendanceRecord{}, attendance.ErrGuardNotAssigned
	}

	temporary := assignedSlot != nil && assignedSlot.IsTemporary
	if present {
		if err := s.rules.CheckNotPresentElsewhere(ctx, guardID, st.ID, date, shiftType); err != nil {
			return attendance.AttendanceRecord{}, err
		}
		if !temporary {
			if err := s.rules.CheckCapacity(ctx, st, date, shiftType); err != nil {
				return attendance.AttendanceRecord{}, err
			}
		}
	}

	record := attendance.AttendanceRecord{
		Date:        date,
		SiteID:      st.ID,
		GuardID:     guardID,
		ShiftType:   shiftType,
		Status:      want,
		Notes:       notes,
		IsTemporary: temporary,
	}
	if existing != nil {
		record = *existing
		record.Status = want
		record.IsTemporary = temporary
		if notes != nil {
			record.Notes = notes
		}
	}
	if standing != nil {
		record.ShiftID = &standing.ID
	}
	if assignedSlot != nil {
		record.SlotID = &assignedSlot.ID
		if temporary && !assignedSlot.PayRate.IsZero() {
			rate := assignedSlot.PayRate
			record.PayRate = &rate
		}
	}

	if existing != nil {
		if err := s.AttendanceRepository.Update(ctx, record); err != nil {
			if errors.Is(err, attendance.ErrGuardPresentElsewhere) {
				return attendance.AttendanceRecord{}, err
			}
			return attendance.AttendanceRecord{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		record, err = s.AttendanceRepository.GetByID(ctx, record.ID)
		if err != nil {
			return attendance.AttendanceRecord{}, fmt.Errorf("failed to reload attendance: %w", err)
		}
	} else {
		record, err = s.AttendanceRepository.Create(ctx, record)
		if err != nil {
			if errors.Is(err, attendance.ErrGuardPresentElsewhere) {
				return attendance.AttendanceRecord{}, err
			}
			return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance: %w", err)
		}
	}

	if assignedSlot != nil {
		assignedSlot.IsPresent = &present
		if err := s.slotRepo.Update(ctx, *assignedSlot); err != nil {
			slog.Error("Failed to sync slot mark", "slot_id", assignedSlot.ID, "error", err)
		}
	}

	s.changed(ctx, st.ID, date)
	return record, nil
}

// UnmarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UnmarkAttendance(ctx context.Context, id string) error {
	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return err
		}
		return fmt.Errorf("failed to get attendance: %w", err)
	}

	if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	if record.SlotID != nil {
		sl, err := s.slotRepo.GetByID(ctx, *record.SlotID)
		switch {
		case err == nil:
			sl.IsPresent = nil
			if err := s.slotRepo.Update(ctx, sl); err != nil {
				slog.Error("Failed to clear slot mark", "slot_id", sl.ID, "error", err)
			}
		case !errors.Is(err, slot.ErrSlotNotFound):
			slog.Error("Failed to load slot for unmark", "slot_id", *record.SlotID, "error", err)
		}
	}

	s.changed(ctx, record.SiteID, record.Date)
	return nil
}

// BulkMarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BulkMarkAttendance(ctx context.Context, req attendance.BulkMarkRequest) (attendance.BulkMarkResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkMarkResponse{}, err
	}

	resp := attendance.BulkMarkResponse{Results: make([]attendance.BulkMarkResult, 0, len(req.GuardIDs))}
	for _, guardID := range req.GuardIDs {
		_, err := s.MarkAttendance(ctx, attendance.MarkAttendanceRequest{
			Date:      req.Date,
			SiteID:    req.SiteID,
			GuardID:   guardID,
			ShiftType: req.ShiftType,
			IsPresent: req.IsPresent,
		})
		result := attendance.BulkMarkResult{GuardID: guardID, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
			resp.FailureCount++
		} else {
			resp.SuccessCount++
		}
		resp.Results = append(resp.Results, result)
	}

	slog.Info("Bulk attendance marked", "site_id", req.SiteID, "date", req.Date, "success", resp.SuccessCount, "failed", resp.FailureCount)
	return resp, nil
}

// CopyAttendanceFromDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CopyAttendanceFromDate(ctx context.Context, req attendance.CopyAttendanceRequest) (attendance.CopyAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CopyAttendanceResponse{}, err
	}

	from, err := utils.ParseDate(req.FromDate)
	if err != nil {
		return attendance.CopyAttendanceResponse{}, err
	}
	to, err := utils.ParseDate(req.ToDate)
	if err != nil {
		return attendance.CopyAttendanceResponse{}, err
	}

	st, err := s.siteRepo.GetByID(ctx, req.SiteID)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return attendance.CopyAttendanceResponse{}, err
		}
		return attendance.CopyAttendanceResponse{}, fmt.Errorf("failed to get site: %w", err)
	}

	present := attendance.StatusPresent
	source, err := s.AttendanceRepository.List(ctx, attendance.RecordQuery{SiteID: &st.ID, Date: &from, Status: &present})
	if err != nil {
		return attendance.CopyAttendanceResponse{}, fmt.Errorf("failed to list source attendance: %w", err)
	}

	var resp attendance.CopyAttendanceResponse
	for _, rec := range source {
		skip := func(reason string) {
			resp.Skipped++
			resp.Details = append(resp.Details, attendance.SkippedGuard{
				GuardID:   rec.GuardID,
				ShiftType: string(rec.ShiftType),
				Reason:    reason,
			})
		}
		fail := func(err error) {
			slog.Error("Failed to copy attendance", "site_id", st.ID, "guard_id", rec.GuardID, "error", err)
			resp.Failed++
			resp.Failures = append(resp.Failures, attendance.SkippedGuard{
				GuardID:   rec.GuardID,
				ShiftType: string(rec.ShiftType),
				Reason:    err.Error(),
			})
		}

		already, err := s.AttendanceRepository.FindOne(ctx, rec.GuardID, st.ID, to, rec.ShiftType)
		if err != nil {
			return resp, fmt.Errorf("failed to find attendance: %w", err)
		}
		if already != nil && already.IsPresent() {
			skip("already marked present")
			continue
		}

		if _, err := s.mark(ctx, st, rec.GuardID, to, rec.ShiftType, true, nil); err != nil {
			if IsRuleOutcome(err) {
				skip(err.Error())
			} else {
				fail(err)
			}
			continue
		}
		resp.Copied++
	}

	slog.Info("Attendance copied", "site_id", st.ID, "from", req.FromDate, "to", req.ToDate,
		"copied", resp.Copied, "skipped", resp.Skipped, "failed", resp.Failed)
	return resp, nil
}

// ResetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ResetAttendance(ctx context.Context, req attendance.ResetAttendanceRequest) (attendance.ResetAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ResetAttendanceResponse{}, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return attendance.ResetAttendanceResponse{}, err
	}
	if _, err := s.siteRepo.GetByID(ctx, req.SiteID); err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return attendance.ResetAttendanceResponse{}, err
		}
		return attendance.ResetAttendanceResponse{}, fmt.Errorf("failed to get site: %w", err)
	}

	deleted, err := s.AttendanceRepository.DeletePresentBySiteDate(ctx, req.SiteID, date)
	if err != nil {
		return attendance.ResetAttendanceResponse{}, fmt.Errorf("failed to delete attendance: %w", err)
	}
	cleared, err := s.slotRepo.ClearPresentMarks(ctx, req.SiteID, date)
	if err != nil {
		return attendance.ResetAttendanceResponse{}, fmt.Errorf("failed to clear slot marks: %w", err)
	}

	s.changed(ctx, req.SiteID, date)
	return attendance.ResetAttendanceResponse{DeletedRecords: deleted, ClearedSlots: cleared}, nil
}

// UpdateAttendanceStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateAttendanceStatus(ctx context.Context, req attendance.UpdateStatusRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if record.Status != attendance.StatusPresent && record.Status != attendance.StatusAbsent {
		return attendance.AttendanceResponse{}, attendance.ErrInvalidStatusChange
	}

	switch attendance.Status(req.Status) {
	case attendance.StatusReplaced:
		replacementID := *req.ReplacementGuardID
		if replacementID == record.GuardID {
			return attendance.AttendanceResponse{}, attendance.ErrInvalidStatusChange
		}
		replacement, err := s.guardRepo.GetByID(ctx, replacementID)
		if err != nil {
			if errors.Is(err, guard.ErrGuardNotFound) {
				return attendance.AttendanceResponse{}, err
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to get replacement guard: %w", err)
		}
		if !replacement.IsActive() {
			return attendance.AttendanceResponse{}, guard.ErrGuardInactive
		}
		// the replacement may not already be present anywhere for this shift, this site included
		if err := s.rules.CheckNotPresentElsewhere(ctx, replacementID, "", record.Date, record.ShiftType); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		record.ReplacementGuardID = &replacementID
		record.ReassignedSiteID = nil

	case attendance.StatusReassigned:
		targetID := *req.ReassignedSiteID
		if targetID == record.SiteID {
			return attendance.AttendanceResponse{}, attendance.ErrInvalidStatusChange
		}
		if _, err := s.siteRepo.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, site.ErrSiteNotFound) {
				return attendance.AttendanceResponse{}, err
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to get site: %w", err)
		}
		record.ReassignedSiteID = &targetID
		record.ReplacementGuardID = nil
	}

	now := s.now().UTC()
	record.Status = attendance.Status(req.Status)
	record.ApprovedBy = approverFromContext(ctx)
	record.ApprovedAt = &now
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if err := s.AttendanceRepository.Update(ctx, record); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	updated, err := s.AttendanceRepository.GetByID(ctx, record.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to reload attendance: %w", err)
	}

	s.changed(ctx, record.SiteID, record.Date)
	return attendance.ToResponse(updated), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.AttendanceRepository.List(ctx, filter.ToQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToResponse(r))
	}
	return responses, nil
}
