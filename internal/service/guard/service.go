package guard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/guardline/roster-backend/internal/domain/guard"
)

type GuardServiceImpl struct {
	guard.GuardRepository
	now func() time.Time
}

func NewGuardService(guardRepo guard.GuardRepository) guard.GuardService {
	return &GuardServiceImpl{GuardRepository: guardRepo, now: time.Now}
}

// CreateGuard implements guard.GuardService.
func (s *GuardServiceImpl) CreateGuard(ctx context.Context, req guard.CreateGuardRequest) (guard.GuardResponse, error) {
	if err := req.Validate(); err != nil {
		return guard.GuardResponse{}, err
	}

	exists, err := s.GuardRepository.ExistsByBadgeNumber(ctx, req.BadgeNumber, nil)
	if err != nil {
		return guard.GuardResponse{}, fmt.Errorf("failed to check badge number: %w", err)
	}
	if exists {
		return guard.GuardResponse{}, guard.ErrBadgeNumberExists
	}

	created, err := s.GuardRepository.Create(ctx, req.ToEntity())
	if err != nil {
		if errors.Is(err, guard.ErrBadgeNumberExists) {
			return guard.GuardResponse{}, err
		}
		return guard.GuardResponse{}, fmt.Errorf("failed to create guard: %w", err)
	}

	return guard.ToResponse(created, s.now()), nil
}

// GetGuard implements guard.GuardService.
func (s *GuardServiceImpl) GetGuard(ctx context.Context, id string) (guard.GuardResponse, error) {
	found, err := s.GuardRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return guard.GuardResponse{}, err
		}
		return guard.GuardResponse{}, fmt.Errorf("failed to get guard: %w", err)
	}
	return guard.ToResponse(found, s.now()), nil
}

// ListGuards implements guard.GuardService.
func (s *GuardServiceImpl) ListGuards(ctx context.Context, filter guard.GuardFilter) (guard.ListGuardResponse, error) {
	if err := filter.Validate(); err != nil {
		return guard.ListGuardResponse{}, err
	}

	guards, total, err := s.GuardRepository.List(ctx, filter)
	if err != nil {
		return guard.ListGuardResponse{}, fmt.Errorf("failed to list guards: %w", err)
	}

	now := s.now()
	responses := make([]guard.GuardResponse, 0, len(guards))
	for _, g := range guards {
		responses = append(responses, guard.ToResponse(g, now))
	}

	return guard.ListGuardResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Guards:     responses,
	}, nil
}

// ListGuardsForSelection implements guard.GuardService.
func (s *GuardServiceImpl) ListGuardsForSelection(ctx context.Context, selectedIDs []string) ([]guard.GuardResponse, error) {
	active := string(guard.StatusActive)
	guards, _, err := s.GuardRepository.List(ctx, guard.GuardFilter{Status: &active, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		return nil, fmt.Errorf("failed to list guards: %w", err)
	}

	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	// selected guards stay in the picker even after leaving active status
	listed := make(map[string]struct{}, len(guards))
	for _, g := range guards {
		listed[g.ID] = struct{}{}
	}
	var missing []string
	for id := range selected {
		if _, ok := listed[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		extra, err := s.GuardRepository.GetByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to get selected guards: %w", err)
		}
		guards = append(guards, extra...)
	}

	now := s.now()
	sorted := guard.SortForSelection(guards, selectedIDs)
	responses := make([]guard.GuardResponse, 0, len(sorted))
	for _, g := range sorted {
		resp := guard.ToResponse(g, now)
		_, resp.IsSelected = selected[g.ID]
		responses = append(responses, resp)
	}
	return responses, nil
}

// UpdateGuard implements guard.GuardService.
func (s *GuardServiceImpl) UpdateGuard(ctx context.Context, req guard.UpdateGuardRequest) (guard.GuardResponse, error) {
	if err := req.Validate(); err != nil {
		return guard.GuardResponse{}, err
	}

	existing, err := s.GuardRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) {
			return guard.GuardResponse{}, err
		}
		return guard.GuardResponse{}, fmt.Errorf("failed to get guard: %w", err)
	}

	exists, err := s.GuardRepository.ExistsByBadgeNumber(ctx, req.BadgeNumber, &req.ID)
	if err != nil {
		return guard.GuardResponse{}, fmt.Errorf("failed to check badge number: %w", err)
	}
	if exists {
		return guard.GuardResponse{}, guard.ErrBadgeNumberExists
	}

	updated := req.ToEntity()
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.GuardRepository.Update(ctx, updated); err != nil {
		if errors.Is(err, guard.ErrBadgeNumberExists) || errors.Is(err, guard.ErrGuardNotFound) {
			return guard.GuardResponse{}, err
		}
		return guard.GuardResponse{}, fmt.Errorf("failed to update guard: %w", err)
	}

	return s.GetGuard(ctx, req.ID)
}

// DeleteGuard implements guard.GuardService.
func (s *GuardServiceImpl) DeleteGuard(ctx context.Context, id string) error {
	if err := s.GuardRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, guard.ErrGuardNotFound) || errors.Is(err, guard.ErrGuardHasShifts) ||
			errors.Is(err, guard.ErrGuardOnBoard) {
			return err
		}
		return fmt.Errorf("failed to delete guard: %w", err)
	}
	return nil
}
