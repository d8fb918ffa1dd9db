package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/shift"
)

type shiftRepositoryImpl struct {
	*Store
}

func NewShiftRepository(store *Store) shift.ShiftRepository {
	return &shiftRepositoryImpl{Store: store}
}

func (r *shiftRepositoryImpl) withNames(sh shift.Shift) shift.Shift {
	sh.GuardName = r.guardName(sh.GuardID)
	sh.SiteName = r.siteName(sh.SiteID)
	return sh
}

func (r *shiftRepositoryImpl) insert(sh shift.Shift) (shift.Shift, error) {
	for _, existing := range r.shifts {
		if existing.SiteID == sh.SiteID && existing.GuardID == sh.GuardID && existing.Type == sh.Type {
			return shift.Shift{}, shift.ErrShiftExists
		}
	}
	now := r.now()
	sh.ID = newID()
	sh.CreatedAt = now
	sh.UpdatedAt = now
	sh.GuardName, sh.SiteName = nil, nil
	r.shifts[sh.ID] = sh
	return r.withNames(sh), nil
}

func (r *shiftRepositoryImpl) Create(ctx context.Context, sh shift.Shift) (shift.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(sh)
}

func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sh, ok := r.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return r.withNames(sh), nil
}

func (r *shiftRepositoryImpl) list(match func(shift.Shift) bool) []shift.Shift {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []shift.Shift{}
	for _, sh := range r.shifts {
		if match(sh) {
			out = append(out, r.withNames(sh))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return strings.ToLower(deref(out[i].GuardName)) < strings.ToLower(deref(out[j].GuardName))
	})
	return out
}

func (r *shiftRepositoryImpl) ListBySite(ctx context.Context, siteID string) ([]shift.Shift, error) {
	return r.list(func(sh shift.Shift) bool { return sh.SiteID == siteID }), nil
}

func (r *shiftRepositoryImpl) ListByGuard(ctx context.Context, guardID string) ([]shift.Shift, error) {
	return r.list(func(sh shift.Shift) bool { return sh.GuardID == guardID }), nil
}

func (r *shiftRepositoryImpl) FindBySiteGuardType(ctx context.Context, siteID, guardID string, shiftType shift.ShiftType) (*shift.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sh := range r.shifts {
		if sh.SiteID == siteID && sh.GuardID == guardID && sh.Type == shiftType {
			found := r.withNames(sh)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *shiftRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shifts[id]; !ok {
		return shift.ErrShiftNotFound
	}
	delete(r.shifts, id)
	return nil
}

// ReplaceForSite takes the lock once for the delete and once per insert, so readers can observe
// the intermediate state.
func (r *shiftRepositoryImpl) ReplaceForSite(ctx context.Context, siteID string, shiftType shift.ShiftType, guardIDs []string) ([]shift.Shift, error) {
	r.mu.Lock()
	for id, sh := range r.shifts {
		if sh.SiteID == siteID && sh.Type == shiftType {
			delete(r.shifts, id)
		}
	}
	r.mu.Unlock()

	out := make([]shift.Shift, 0, len(guardIDs))
	for _, guardID := range guardIDs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		created, err := r.Create(ctx, shift.Shift{SiteID: siteID, GuardID: guardID, Type: shiftType})
		if err != nil {
			return out, err
		}
		out = append(out, created)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
