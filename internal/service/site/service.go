package site

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/guardline/roster-backend/internal/domain/site"
)

type SiteServiceImpl struct {
	site.SiteRepository
}

func NewSiteService(siteRepo site.SiteRepository) site.SiteService {
	return &SiteServiceImpl{SiteRepository: siteRepo}
}

// CreateSite implements site.SiteService.
func (s *SiteServiceImpl) CreateSite(ctx context.Context, req site.CreateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	created, err := s.SiteRepository.Create(ctx, req.ToEntity())
	if err != nil {
		if errors.Is(err, site.ErrSiteNameExists) {
			return site.SiteResponse{}, err
		}
		return site.SiteResponse{}, fmt.Errorf("failed to create site: %w", err)
	}

	return site.ToResponse(created), nil
}

// GetSite implements site.SiteService.
func (s *SiteServiceImpl) GetSite(ctx context.Context, id string) (site.SiteResponse, error) {
	found, err := s.SiteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.SiteResponse{}, err
		}
		return site.SiteResponse{}, fmt.Errorf("failed to get site: %w", err)
	}
	return site.ToResponse(found), nil
}

// ListSites implements site.SiteService.
func (s *SiteServiceImpl) ListSites(ctx context.Context, filter site.SiteFilter) (site.ListSiteResponse, error) {
	if err := filter.Validate(); err != nil {
		return site.ListSiteResponse{}, err
	}

	sites, total, err := s.SiteRepository.List(ctx, filter)
	if err != nil {
		return site.ListSiteResponse{}, fmt.Errorf("failed to list sites: %w", err)
	}

	responses := make([]site.SiteResponse, 0, len(sites))
	for _, st := range sites {
		responses = append(responses, site.ToResponse(st))
	}

	return site.ListSiteResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Sites:      responses,
	}, nil
}

// UpdateSite implements site.SiteService.
// Staffing changes apply to boards generated or regenerated afterwards.
func (s *SiteServiceImpl) UpdateSite(ctx context.Context, req site.UpdateSiteRequest) (site.SiteResponse, error) {
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	existing, err := s.SiteRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return site.SiteResponse{}, err
		}
		return site.SiteResponse{}, fmt.Errorf("failed to get site: %w", err)
	}

	updated := req.ToEntity()
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.SiteRepository.Update(ctx, updated); err != nil {
		if errors.Is(err, site.ErrSiteNameExists) || errors.Is(err, site.ErrSiteNotFound) {
			return site.SiteResponse{}, err
		}
		return site.SiteResponse{}, fmt.Errorf("failed to update site: %w", err)
	}

	return s.GetSite(ctx, req.ID)
}

// DeleteSite implements site.SiteService.
func (s *SiteServiceImpl) DeleteSite(ctx context.Context, id string) error {
	if err := s.SiteRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, site.ErrSiteNotFound) || errors.Is(err, site.ErrSiteInUse) {
			return err
		}
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return nil
}
