package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/guardline/roster-backend/internal/domain/guard"
)

type guardRepositoryImpl struct {
	*Store
}

func NewGuardRepository(store *Store) guard.GuardRepository {
	return &guardRepositoryImpl{Store: store}
}

func (r *guardRepositoryImpl) badgeTaken(badge, excludeID string) bool {
	for _, g := range r.guards {
		if g.ID != excludeID && strings.EqualFold(g.BadgeNumber, badge) {
			return true
		}
	}
	return false
}

func (r *guardRepositoryImpl) Create(ctx context.Context, g guard.Guard) (guard.Guard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.badgeTaken(g.BadgeNumber, "") {
		return guard.Guard{}, guard.ErrBadgeNumberExists
	}

	now := r.now()
	g.ID = newID()
	g.CreatedAt = now
	g.UpdatedAt = now
	r.guards[g.ID] = g
	return g, nil
}

func (r *guardRepositoryImpl) GetByID(ctx context.Context, id string) (guard.Guard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.guards[id]
	if !ok {
		return guard.Guard{}, guard.ErrGuardNotFound
	}
	return g, nil
}

// GetByIDs skips unknown ids
func (r *guardRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]guard.Guard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]guard.Guard, 0, len(ids))
	for _, id := range ids {
		if g, ok := r.guards[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *guardRepositoryImpl) List(ctx context.Context, filter guard.GuardFilter) ([]guard.Guard, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []guard.Guard
	for _, g := range r.guards {
		if filter.Search != nil {
			q := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(g.Name), q) && !strings.Contains(strings.ToLower(g.BadgeNumber), q) {
				continue
			}
		}
		if filter.Status != nil && string(g.Status) != *filter.Status {
			continue
		}
		if filter.Type != nil && string(g.Type) != *filter.Type {
			continue
		}
		out = append(out, g)
	}

	desc := strings.EqualFold(filter.SortOrder, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "badge_number":
			less = out[i].BadgeNumber < out[j].BadgeNumber
		case "created_at":
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		default:
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

func (r *guardRepositoryImpl) ExistsByBadgeNumber(ctx context.Context, badgeNumber string, excludeID *string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exclude := ""
	if excludeID != nil {
		exclude = *excludeID
	}
	return r.badgeTaken(badgeNumber, exclude), nil
}

func (r *guardRepositoryImpl) Update(ctx context.Context, g guard.Guard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.guards[g.ID]
	if !ok {
		return guard.ErrGuardNotFound
	}
	if r.badgeTaken(g.BadgeNumber, g.ID) {
		return guard.ErrBadgeNumberExists
	}

	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = r.now()
	r.guards[g.ID] = g
	return nil
}

func (r *guardRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.guards[id]; !ok {
		return guard.ErrGuardNotFound
	}
	for _, sh := range r.shifts {
		if sh.GuardID == id {
			return guard.ErrGuardHasShifts
		}
	}
	for _, sl := range r.slots {
		if sl.IsAssignedTo(id) {
			return guard.ErrGuardOnBoard
		}
	}
	for _, a := range r.attendance {
		if a.GuardID == id && a.IsPresent() {
			return guard.ErrGuardOnBoard
		}
	}
	delete(r.guards, id)
	return nil
}
