package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/pkg/validator"
)

type ShiftServiceImpl struct {
	shift.ShiftRepository
	siteRepo  site.SiteRepository
	guardRepo guard.GuardRepository
}

func NewShiftService(shiftRepo shift.ShiftRepository, siteRepo site.SiteRepository, guardRepo guard.GuardRepository) shift.ShiftService {
	return &ShiftServiceImpl{
		ShiftRepository: shiftRepo,
		siteRepo:        siteRepo,
		guardRepo:       guardRepo,
	}
}

func (s *ShiftServiceImpl) ensureSite(ctx context.Context, siteID string) error {
	if _, err := s.siteRepo.GetByID(ctx, siteID); err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return err
		}
		return fmt.Errorf("failed to get site: %w", err)
	}
	return nil
}

// checkGuardFree rejects a guard that already holds shiftType at a site other than siteID.
func (s *ShiftServiceImpl) checkGuardFree(ctx context.Context, g guard.Guard, siteID string, shiftType shift.ShiftType) error {
	held, err := s.ShiftRepository.ListByGuard(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("failed to list guard shifts: %w", err)
	}
	for _, h := range held {
		if h.Type == shiftType && h.SiteID != siteID {
			siteName := h.SiteID
			if h.SiteName != nil {
				siteName = *h.SiteName
			}
			return fmt.Errorf("%w: %s already works %s shift at %s", shift.ErrShiftConflict, g.Name, shiftType, siteName)
		}
	}
	return nil
}

// CreateShift implements shift.ShiftService.
func (s *ShiftServiceImpl) CreateShift(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}
	shiftType := shift.ShiftType(req.Type)

	if err := s.ensureSite(ctx, req.SiteID); err != nil {
		return shift.ShiftResponse{}, err
	}

	g, err := s.guardRepo.GetByID(ctx, req.GuardID)
	if err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return shift.ShiftResponse{}, err
		}
		return shift.ShiftResponse{}, fmt.Errorf("failed to get guard: %w", err)
	}
	if !g.IsActive() {
		return shift.ShiftResponse{}, guard.ErrGuardInactive
	}

	existing, err := s.ShiftRepository.FindBySiteGuardType(ctx, req.SiteID, req.GuardID, shiftType)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to find shift: %w", err)
	}
	if existing != nil {
		return shift.ShiftResponse{}, shift.ErrShiftExists
	}

	if err := s.checkGuardFree(ctx, g, req.SiteID, shiftType); err != nil {
		return shift.ShiftResponse{}, err
	}

	created, err := s.ShiftRepository.Create(ctx, shift.Shift{SiteID: req.SiteID, GuardID: req.GuardID, Type: shiftType})
	if err != nil {
		if errors.Is(err, shift.ErrShiftExists) || errors.Is(err, shift.ErrShiftConflict) {
			return shift.ShiftResponse{}, err
		}
		return shift.ShiftResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return shift.ToResponse(created), nil
}

// ListSiteShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ListSiteShifts(ctx context.Context, siteID string) ([]shift.ShiftResponse, error) {
	if err := s.ensureSite(ctx, siteID); err != nil {
		return nil, err
	}

	shifts, err := s.ShiftRepository.ListBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		responses = append(responses, shift.ToResponse(sh))
	}
	return responses, nil
}

// DeleteShift implements shift.ShiftService.
func (s *ShiftServiceImpl) DeleteShift(ctx context.Context, id string) error {
	if err := s.ShiftRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

// AllocateGuards implements shift.ShiftService.
// Every guard is checked before the replace so a rejected allocation leaves the site untouched.
func (s *ShiftServiceImpl) AllocateGuards(ctx context.Context, req shift.AllocateGuardsRequest) (shift.AllocateGuardsResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.AllocateGuardsResponse{}, err
	}
	shiftType := shift.ShiftType(req.Type)

	if err := s.ensureSite(ctx, req.SiteID); err != nil {
		return shift.AllocateGuardsResponse{}, err
	}

	guards, err := s.guardRepo.GetByIDs(ctx, req.GuardIDs)
	if err != nil {
		return shift.AllocateGuardsResponse{}, fmt.Errorf("failed to get guards: %w", err)
	}
	if len(guards) != len(req.GuardIDs) {
		return shift.AllocateGuardsResponse{}, guard.ErrGuardNotFound
	}

	for _, g := range guards {
		if !g.IsActive() {
			return shift.AllocateGuardsResponse{}, fmt.Errorf("%w: %s", guard.ErrGuardInactive, g.Name)
		}
		if err := s.checkGuardFree(ctx, g, req.SiteID, shiftType); err != nil {
			return shift.AllocateGuardsResponse{}, err
		}
	}

	shifts, err := s.ShiftRepository.ReplaceForSite(ctx, req.SiteID, shiftType, req.GuardIDs)
	if err != nil {
		slog.Error("Shift replace failed", "site_id", req.SiteID, "type", shiftType, "written", len(shifts), "error", err)
		return shift.AllocateGuardsResponse{}, fmt.Errorf("failed to replace shifts: %w", err)
	}

	slog.Info("Allocated guards", "site_id", req.SiteID, "type", shiftType, "count", len(shifts))

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		responses = append(responses, shift.ToResponse(sh))
	}
	return shift.AllocateGuardsResponse{SiteID: req.SiteID, Type: req.Type, Shifts: responses}, nil
}

// ClearShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ClearShifts(ctx context.Context, siteID string, shiftType shift.ShiftType) error {
	if !shiftType.IsValid() {
		var errs validator.ValidationErrors
		errs.Add("type", "type must be one of: "+strings.Join(shift.ShiftTypeValues, ", "))
		return errs
	}
	if err := s.ensureSite(ctx, siteID); err != nil {
		return err
	}
	if _, err := s.ShiftRepository.ReplaceForSite(ctx, siteID, shiftType, nil); err != nil {
		return fmt.Errorf("failed to clear shifts: %w", err)
	}
	return nil
}
