package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/pkg/utils"
	attendanceservice "github.com/guardline/roster-backend/internal/service/attendance"
)

var shiftOrder = []shift.ShiftType{shift.ShiftTypeDay, shift.ShiftTypeNight}

type SlotServiceImpl struct {
	slot.SlotRepository
	attendanceRepo attendance.AttendanceRepository
	siteRepo       site.SiteRepository
	guardRepo      guard.GuardRepository
	rules          *attendanceservice.Rules
	observer       slot.BoardObserver
}

func NewSlotService(
	slotRepo slot.SlotRepository,
	attendanceRepo attendance.AttendanceRepository,
	siteRepo site.SiteRepository,
	guardRepo guard.GuardRepository,
	rules *attendanceservice.Rules,
	observer slot.BoardObserver,
) slot.SlotService {
	return &SlotServiceImpl{
		SlotRepository: slotRepo,
		attendanceRepo: attendanceRepo,
		siteRepo:       siteRepo,
		guardRepo:      guardRepo,
		rules:          rules,
		observer:       observer,
	}
}

func (s *SlotServiceImpl) changed(ctx context.Context, siteID string, date time.Time) {
	if s.observer != nil {
		s.observer.BoardChanged(ctx, siteID, date)
	}
}

func (s *SlotServiceImpl) getSite(ctx context.Context, id string) (site.Site, error) {
	st, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.Site{}, err
		}
		return site.Site{}, fmt.Errorf("failed to get site: %w", err)
	}
	return st, nil
}

func (s *SlotServiceImpl) getSlot(ctx context.Context, id string) (slot.DailyAttendanceSlot, error) {
	sl, err := s.SlotRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return slot.DailyAttendanceSlot{}, err
		}
		return slot.DailyAttendanceSlot{}, fmt.Errorf("failed to get slot: %w", err)
	}
	return sl, nil
}

func (s *SlotServiceImpl) board(ctx context.Context, st site.Site, date time.Time) (slot.BoardResponse, error) {
	slots, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, date)
	if err != nil {
		return slot.BoardResponse{}, fmt.Errorf("failed to list slots: %w", err)
	}
	return slot.BuildBoard(st.ID, utils.FormatDate(date), slots,
		st.Capacity(shift.ShiftTypeDay), st.Capacity(shift.ShiftTypeNight)), nil
}

// expectedSlots lists the regular positions implied by the site's staffing plan.
func expectedSlots(st site.Site) []slot.DailyAttendanceSlot {
	var out []slot.DailyAttendanceSlot
	for _, req := range st.Requirements() {
		for _, shiftType := range shiftOrder {
			for n := 1; n <= req.Count(shiftType); n++ {
				out = append(out, slot.DailyAttendanceSlot{
					SiteID:     st.ID,
					ShiftType:  shiftType,
					RoleType:   req.Role,
					SlotNumber: n,
					PayRate:    req.RatePerSlot,
				})
			}
		}
	}
	return out
}

// fill creates every expected regular slot missing from existing and returns the slots created
// together with the existing regular slots that are no longer part of the plan.
func (s *SlotServiceImpl) fill(ctx context.Context, st site.Site, date time.Time, existing []slot.DailyAttendanceSlot) (int, []slot.DailyAttendanceSlot, error) {
	have := make(map[slot.Key]bool, len(existing))
	for _, sl := range existing {
		if !sl.IsTemporary {
			have[sl.Key()] = true
		}
	}

	expected := expectedSlots(st)
	want := make(map[slot.Key]bool, len(expected))
	created := 0
	for _, sl := range expected {
		want[sl.Key()] = true
		if have[sl.Key()] {
			continue
		}
		sl.Date = date
		if _, err := s.SlotRepository.Create(ctx, sl); err != nil {
			if errors.Is(err, slot.ErrSlotExists) {
				continue
			}
			return created, nil, fmt.Errorf("failed to create slot: %w", err)
		}
		created++
	}

	var excess []slot.DailyAttendanceSlot
	for _, sl := range existing {
		if !sl.IsTemporary && !want[sl.Key()] {
			excess = append(excess, sl)
		}
	}
	return created, excess, nil
}

// GenerateSlotsForDate implements slot.SlotService.
// A board that already has regular slots is returned as is.
func (s *SlotServiceImpl) GenerateSlotsForDate(ctx context.Context, req slot.SiteDateRequest) (slot.BoardResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.BoardResponse{}, err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return slot.BoardResponse{}, err
	}
	st, err := s.getSite(ctx, req.SiteID)
	if err != nil {
		return slot.BoardResponse{}, err
	}

	if _, err := s.generate(ctx, st, date); err != nil {
		return slot.BoardResponse{}, err
	}
	return s.board(ctx, st, date)
}

func (s *SlotServiceImpl) generate(ctx context.Context, st site.Site, date time.Time) (int, error) {
	existing, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list slots: %w", err)
	}
	for _, sl := range existing {
		if !sl.IsTemporary {
			return 0, nil
		}
	}

	created, _, err := s.fill(ctx, st, date, existing)
	if err != nil {
		return created, err
	}
	if created > 0 {
		slog.Info("Generated slots", "site_id", st.ID, "date", utils.FormatDate(date), "count", created)
		s.changed(ctx, st.ID, date)
	}
	return created, nil
}

// RegenerateSlotsForDate implements slot.SlotService.
// Missing slots are added; slots beyond the plan are reported, never deleted.
func (s *SlotServiceImpl) RegenerateSlotsForDate(ctx context.Context, req slot.SiteDateRequest) (slot.RegenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.RegenerateResponse{}, err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return slot.RegenerateResponse{}, err
	}
	st, err := s.getSite(ctx, req.SiteID)
	if err != nil {
		return slot.RegenerateResponse{}, err
	}

	existing, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, date)
	if err != nil {
		return slot.RegenerateResponse{}, fmt.Errorf("failed to list slots: %w", err)
	}

	created, excess, err := s.fill(ctx, st, date, existing)
	if err != nil {
		return slot.RegenerateResponse{}, err
	}
	if created > 0 {
		s.changed(ctx, st.ID, date)
	}

	board, err := s.board(ctx, st, date)
	if err != nil {
		return slot.RegenerateResponse{}, err
	}

	resp := slot.RegenerateResponse{Board: board, Created: created, Excess: make([]slot.SlotResponse, 0, len(excess))}
	for _, sl := range excess {
		resp.Excess = append(resp.Excess, slot.ToResponse(sl))
	}
	return resp, nil
}

// CopySlotsFromPreviousDay implements slot.SlotService.
// Each guard carried over is assigned to the matching slot and marked present.
func (s *SlotServiceImpl) CopySlotsFromPreviousDay(ctx context.Context, req slot.CopySlotsRequest) (slot.CopySlotsResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.CopySlotsResponse{}, err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return slot.CopySlotsResponse{}, err
	}
	previous, err := utils.ParseDate(req.PreviousDate)
	if err != nil {
		return slot.CopySlotsResponse{}, err
	}
	st, err := s.getSite(ctx, req.SiteID)
	if err != nil {
		return slot.CopySlotsResponse{}, err
	}

	source, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, previous)
	if err != nil {
		return slot.CopySlotsResponse{}, fmt.Errorf("failed to list previous slots: %w", err)
	}
	var assigned []slot.DailyAttendanceSlot
	for _, sl := range source {
		if sl.AssignedGuardID != nil {
			assigned = append(assigned, sl)
		}
	}
	if len(assigned) == 0 {
		return slot.CopySlotsResponse{}, slot.ErrNoPreviousSlots
	}

	existing, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, date)
	if err != nil {
		return slot.CopySlotsResponse{}, fmt.Errorf("failed to list slots: %w", err)
	}
	created, _, err := s.fill(ctx, st, date, existing)
	if err != nil {
		return slot.CopySlotsResponse{}, err
	}
	if created > 0 {
		slog.Info("Generated slots", "site_id", st.ID, "date", req.Date, "count", created)
	}
	current, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, date)
	if err != nil {
		return slot.CopySlotsResponse{}, fmt.Errorf("failed to list slots: %w", err)
	}
	type position struct {
		key       slot.Key
		temporary bool
	}
	targets := make(map[position]slot.DailyAttendanceSlot, len(current))
	for _, sl := range current {
		targets[position{sl.Key(), sl.IsTemporary}] = sl
	}

	var resp slot.CopySlotsResponse
	for _, src := range assigned {
		guardID := *src.AssignedGuardID
		skip := func(reason string) {
			resp.Skipped++
			resp.Details = append(resp.Details, slot.SkippedGuard{GuardID: guardID, Reason: reason})
		}
		reject := func(err error) {
			if attendanceservice.IsRuleOutcome(err) {
				skip(err.Error())
				return
			}
			slog.Error("Failed to copy slot", "site_id", st.ID, "guard_id", guardID, "error", err)
			resp.Failed++
			resp.Failures = append(resp.Failures, slot.SkippedGuard{GuardID: guardID, Reason: err.Error()})
		}

		target, ok := targets[position{src.Key(), src.IsTemporary}]
		if !ok {
			if !src.IsTemporary {
				skip("slot is no longer part of the staffing plan")
				continue
			}
			target, err = s.SlotRepository.Create(ctx, slot.DailyAttendanceSlot{
				SiteID:      st.ID,
				Date:        date,
				ShiftType:   src.ShiftType,
				RoleType:    src.RoleType,
				SlotNumber:  src.SlotNumber,
				IsTemporary: true,
				PayRate:     src.PayRate,
			})
			if err != nil {
				reject(err)
				continue
			}
		}

		if target.AssignedGuardID != nil && *target.AssignedGuardID != guardID {
			skip(slot.ErrSlotOccupied.Error())
			continue
		}

		assignedNow := target.AssignedGuardID == nil
		if assignedNow {
			target, err = s.assign(ctx, target, guardID)
			if err != nil {
				reject(err)
				continue
			}
		}
		if _, err := s.mark(ctx, st, target, true); err != nil {
			if assignedNow {
				target.AssignedGuardID, target.IsPresent = nil, nil
				if rbErr := s.SlotRepository.Update(ctx, target); rbErr != nil {
					slog.Error("Failed to undo copied assignment", "slot_id", target.ID, "error", rbErr)
				}
			}
			reject(err)
			continue
		}
		resp.Copied++
	}

	s.changed(ctx, st.ID, date)
	slog.Info("Slots copied", "site_id", st.ID, "from", req.PreviousDate, "to", req.Date, "copied", resp.Copied, "skipped", resp.Skipped, "failed", resp.Failed)

	resp.Board, err = s.board(ctx, st, date)
	if err != nil {
		return slot.CopySlotsResponse{}, err
	}
	return resp, nil
}

// GetBoard implements slot.SlotService.
func (s *SlotServiceImpl) GetBoard(ctx context.Context, req slot.SiteDateRequest) (slot.BoardResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.BoardResponse{}, err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return slot.BoardResponse{}, err
	}
	st, err := s.getSite(ctx, req.SiteID)
	if err != nil {
		return slot.BoardResponse{}, err
	}
	return s.board(ctx, st, date)
}

// assign binds guardID to an empty slot after the cross-site checks.
func (s *SlotServiceImpl) assign(ctx context.Context, target slot.DailyAttendanceSlot, guardID string) (slot.DailyAttendanceSlot, error) {
	g, err := s.guardRepo.GetByID(ctx, guardID)
	if err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return target, err
		}
		return target, fmt.Errorf("failed to get guard: %w", err)
	}
	if !g.IsActive() {
		return target, guard.ErrGuardInactive
	}

	if err := s.rules.CheckNotAssignedElsewhere(ctx, guardID, target); err != nil {
		return target, err
	}
	if err := s.rules.CheckNotPresentElsewhere(ctx, guardID, target.SiteID, target.Date, target.ShiftType); err != nil {
		return target, err
	}

	target.AssignedGuardID = &guardID
	target.IsPresent = nil
	if err := s.SlotRepository.Update(ctx, target); err != nil {
		return target, fmt.Errorf("failed to assign guard: %w", err)
	}
	return s.getSlot(ctx, target.ID)
}

// AssignGuardToSlot implements slot.SlotService.
func (s *SlotServiceImpl) AssignGuardToSlot(ctx context.Context, req slot.AssignGuardRequest) (slot.SlotResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.SlotResponse{}, err
	}

	target, err := s.getSlot(ctx, req.SlotID)
	if err != nil {
		return slot.SlotResponse{}, err
	}
	if target.IsAssignedTo(req.GuardID) {
		return slot.ToResponse(target), nil
	}
	if target.AssignedGuardID != nil {
		return slot.SlotResponse{}, slot.ErrSlotOccupied
	}

	updated, err := s.assign(ctx, target, req.GuardID)
	if err != nil {
		return slot.SlotResponse{}, err
	}

	s.changed(ctx, updated.SiteID, updated.Date)
	return slot.ToResponse(updated), nil
}

// clearAttendance removes whatever attendance record the slot produced.
func (s *SlotServiceImpl) clearAttendance(ctx context.Context, sl slot.DailyAttendanceSlot) error {
	record, err := s.attendanceRepo.FindBySlot(ctx, sl.ID)
	if err != nil {
		return fmt.Errorf("failed to find slot attendance: %w", err)
	}
	if record == nil && sl.AssignedGuardID != nil {
		record, err = s.attendanceRepo.FindOne(ctx, *sl.AssignedGuardID, sl.SiteID, sl.Date, sl.ShiftType)
		if err != nil {
			return fmt.Errorf("failed to find slot attendance: %w", err)
		}
	}
	if record == nil {
		return nil
	}
	if err := s.attendanceRepo.Delete(ctx, record.ID); err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return fmt.Errorf("failed to delete slot attendance: %w", err)
	}
	return nil
}

func (s *SlotServiceImpl) unassign(ctx context.Context, sl slot.DailyAttendanceSlot) (slot.DailyAttendanceSlot, error) {
	if err := s.clearAttendance(ctx, sl); err != nil {
		return sl, err
	}
	sl.AssignedGuardID = nil
	sl.IsPresent = nil
	if err := s.SlotRepository.Update(ctx, sl); err != nil {
		return sl, fmt.Errorf("failed to unassign guard: %w", err)
	}
	sl.GuardName = nil
	return sl, nil
}

// UnassignGuardFromSlot implements slot.SlotService.
func (s *SlotServiceImpl) UnassignGuardFromSlot(ctx context.Context, slotID string) (slot.SlotResponse, error) {
	target, err := s.getSlot(ctx, slotID)
	if err != nil {
		return slot.SlotResponse{}, err
	}
	if target.AssignedGuardID == nil {
		return slot.SlotResponse{}, slot.ErrSlotNotAssigned
	}

	updated, err := s.unassign(ctx, target)
	if err != nil {
		return slot.SlotResponse{}, err
	}

	s.changed(ctx, updated.SiteID, updated.Date)
	return slot.ToResponse(updated), nil
}

// mark records the slot's guard as present or absent. Present writes an attendance record,
// absent removes it.
func (s *SlotServiceImpl) mark(ctx context.Context, st site.Site, target slot.DailyAttendanceSlot, present bool) (slot.DailyAttendanceSlot, error) {
	if target.AssignedGuardID == nil {
		return target, slot.ErrSlotNotAssigned
	}
	guardID := *target.AssignedGuardID

	if !present {
		if err := s.clearAttendance(ctx, target); err != nil {
			return target, err
		}
		target.IsPresent = &present
		if err := s.SlotRepository.Update(ctx, target); err != nil {
			return target, fmt.Errorf("failed to mark slot: %w", err)
		}
		return target, nil
	}

	existing, err := s.attendanceRepo.FindOne(ctx, guardID, target.SiteID, target.Date, target.ShiftType)
	if err != nil {
		return target, fmt.Errorf("failed to find attendance: %w", err)
	}
	if existing != nil && existing.IsPresent() && target.IsPresent != nil && *target.IsPresent {
		return target, nil
	}

	if err := s.rules.CheckNotPresentElsewhere(ctx, guardID, target.SiteID, target.Date, target.ShiftType); err != nil {
		return target, err
	}
	if !target.IsTemporary && (existing == nil || !existing.IsPresent()) {
		if err := s.rules.CheckCapacity(ctx, st, target.Date, target.ShiftType); err != nil {
			return target, err
		}
	}

	record := attendance.AttendanceRecord{
		Date:      target.Date,
		SiteID:    target.SiteID,
		GuardID:   guardID,
		ShiftType: target.ShiftType,
	}
	if existing != nil {
		record = *existing
	}
	record.Status = attendance.StatusPresent
	record.SlotID = &target.ID
	record.IsTemporary = target.IsTemporary
	if target.IsTemporary && !target.PayRate.IsZero() {
		rate := target.PayRate
		record.PayRate = &rate
	}

	if existing != nil {
		err = s.attendanceRepo.Update(ctx, record)
	} else {
		_, err = s.attendanceRepo.Create(ctx, record)
	}
	if err != nil {
		if errors.Is(err, attendance.ErrGuardPresentElsewhere) {
			return target, err
		}
		return target, fmt.Errorf("failed to write attendance: %w", err)
	}

	target.IsPresent = &present
	if err := s.SlotRepository.Update(ctx, target); err != nil {
		return target, fmt.Errorf("failed to mark slot: %w", err)
	}
	return target, nil
}

// MarkSlotAttendance implements slot.SlotService.
func (s *SlotServiceImpl) MarkSlotAttendance(ctx context.Context, req slot.MarkSlotRequest) (slot.SlotResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.SlotResponse{}, err
	}

	target, err := s.getSlot(ctx, req.SlotID)
	if err != nil {
		return slot.SlotResponse{}, err
	}
	st, err := s.getSite(ctx, target.SiteID)
	if err != nil {
		return slot.SlotResponse{}, err
	}

	updated, err := s.mark(ctx, st, target, *req.IsPresent)
	if err != nil {
		return slot.SlotResponse{}, err
	}

	s.changed(ctx, updated.SiteID, updated.Date)
	return slot.ToResponse(updated), nil
}

// CreateTemporarySlot implements slot.SlotService.
func (s *SlotServiceImpl) CreateTemporarySlot(ctx context.Context, req slot.CreateTemporarySlotRequest) (slot.SlotResponse, error) {
	if err := req.Validate(); err != nil {
		return slot.SlotResponse{}, err
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return slot.SlotResponse{}, err
	}
	st, err := s.getSite(ctx, req.SiteID)
	if err != nil {
		return slot.SlotResponse{}, err
	}
	shiftType := shift.ShiftType(req.ShiftType)

	existing, err := s.SlotRepository.ListBySiteDate(ctx, st.ID, date)
	if err != nil {
		return slot.SlotResponse{}, fmt.Errorf("failed to list slots: %w", err)
	}
	next := 1
	for _, sl := range existing {
		if sl.IsTemporary && sl.ShiftType == shiftType && sl.RoleType == req.RoleType && sl.SlotNumber >= next {
			next = sl.SlotNumber + 1
		}
	}

	created, err := s.SlotRepository.Create(ctx, slot.DailyAttendanceSlot{
		SiteID:      st.ID,
		Date:        date,
		ShiftType:   shiftType,
		RoleType:    req.RoleType,
		SlotNumber:  next,
		IsTemporary: true,
		PayRate:     req.PayRate,
	})
	if err != nil {
		if errors.Is(err, slot.ErrSlotExists) {
			return slot.SlotResponse{}, err
		}
		return slot.SlotResponse{}, fmt.Errorf("failed to create temporary slot: %w", err)
	}

	if req.GuardID != nil && *req.GuardID != "" {
		assigned, err := s.assign(ctx, created, *req.GuardID)
		if err != nil {
			if delErr := s.SlotRepository.Delete(ctx, created.ID); delErr != nil {
				slog.Error("Failed to drop temporary slot after rejected assignment", "slot_id", created.ID, "error", delErr)
			}
			return slot.SlotResponse{}, err
		}
		created = assigned
	}

	s.changed(ctx, st.ID, date)
	return slot.ToResponse(created), nil
}

// DeleteSlot implements slot.SlotService.
// An assigned slot is unassigned first so no attendance record is left pointing at it.
func (s *SlotServiceImpl) DeleteSlot(ctx context.Context, slotID string) error {
	target, err := s.getSlot(ctx, slotID)
	if err != nil {
		return err
	}

	if target.AssignedGuardID != nil {
		if target, err = s.unassign(ctx, target); err != nil {
			return err
		}
	}

	if err := s.SlotRepository.Delete(ctx, slotID); err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	s.changed(ctx, target.SiteID, target.Date)
	return nil
}
