package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/site"
)

type siteRepositoryImpl struct {
	*Store
}

func NewSiteRepository(store *Store) site.SiteRepository {
	return &siteRepositoryImpl{Store: store}
}

func cloneSite(s site.Site) site.Site {
	s.StaffingSlots = append([]site.StaffingSlot(nil), s.StaffingSlots...)
	return s
}

func (r *siteRepositoryImpl) nameTaken(name, excludeID string) bool {
	for _, s := range r.sites {
		if s.ID != excludeID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func (r *siteRepositoryImpl) Create(ctx context.Context, s site.Site) (site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(s.Name, "") {
		return site.Site{}, site.ErrSiteNameExists
	}

	now := r.now()
	s.ID = newID()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.sites[s.ID] = cloneSite(s)
	return cloneSite(s), nil
}

func (r *siteRepositoryImpl) GetByID(ctx context.Context, id string) (site.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sites[id]
	if !ok {
		return site.Site{}, site.ErrSiteNotFound
	}
	return cloneSite(s), nil
}

func (r *siteRepositoryImpl) List(ctx context.Context, filter site.SiteFilter) ([]site.Site, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []site.Site
	for _, s := range r.sites {
		if filter.Name != nil && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(*filter.Name)) {
			continue
		}
		out = append(out, cloneSite(s))
	}

	desc := strings.EqualFold(filter.SortOrder, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		if filter.SortBy == "created_at" {
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		} else {
			less = strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		if desc {
			return !less
		}
		return less
	})

	total := int64(len(out))
	return paginate(out, filter.Page, filter.Limit), total, nil
}

func (r *siteRepositoryImpl) Update(ctx context.Context, s site.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sites[s.ID]
	if !ok {
		return site.ErrSiteNotFound
	}
	if r.nameTaken(s.Name, s.ID) {
		return site.ErrSiteNameExists
	}

	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = r.now()
	r.sites[s.ID] = cloneSite(s)
	return nil
}

func (r *siteRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sites[id]; !ok {
		return site.ErrSiteNotFound
	}
	for _, sh := range r.shifts {
		if sh.SiteID == id {
			return site.ErrSiteInUse
		}
	}
	for _, sl := range r.slots {
		if sl.SiteID == id && sl.AssignedGuardID != nil {
			return site.ErrSiteInUse
		}
	}
	delete(r.sites, id)
	return nil
}
