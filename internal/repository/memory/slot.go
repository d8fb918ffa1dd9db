package memory

import (
	"context"
	"sort"
	"time"

	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/pkg/utils"
)

type slotRepositoryImpl struct {
	*Store
}

func NewSlotRepository(store *Store) slot.SlotRepository {
	return &slotRepositoryImpl{Store: store}
}

func cloneSlot(s slot.DailyAttendanceSlot) slot.DailyAttendanceSlot {
	if s.AssignedGuardID != nil {
		id := *s.AssignedGuardID
		s.AssignedGuardID = &id
	}
	if s.IsPresent != nil {
		p := *s.IsPresent
		s.IsPresent = &p
	}
	return s
}

func (r *slotRepositoryImpl) read(s slot.DailyAttendanceSlot) slot.DailyAttendanceSlot {
	s = cloneSlot(s)
	s.GuardName = nil
	if s.AssignedGuardID != nil {
		s.GuardName = r.guardName(*s.AssignedGuardID)
	}
	return s
}

func (r *slotRepositoryImpl) Create(ctx context.Context, s slot.DailyAttendanceSlot) (slot.DailyAttendanceSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.Date = utils.DateOnly(s.Date)
	for _, existing := range r.slots {
		if existing.SiteID == s.SiteID && sameDay(existing.Date, s.Date) &&
			existing.IsTemporary == s.IsTemporary && existing.Key() == s.Key() {
			return slot.DailyAttendanceSlot{}, slot.ErrSlotExists
		}
	}

	now := r.now()
	s.ID = newID()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.slots[s.ID] = cloneSlot(s)
	return r.read(s), nil
}

func (r *slotRepositoryImpl) GetByID(ctx context.Context, id string) (slot.DailyAttendanceSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return slot.DailyAttendanceSlot{}, slot.ErrSlotNotFound
	}
	return r.read(s), nil
}

func (r *slotRepositoryImpl) ListBySiteDate(ctx context.Context, siteID string, date time.Time) ([]slot.DailyAttendanceSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []slot.DailyAttendanceSlot{}
	for _, s := range r.slots {
		if s.SiteID == siteID && sameDay(s.Date, date) {
			out = append(out, r.read(s))
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *slotRepositoryImpl) ListByGuardDate(ctx context.Context, guardID string, date time.Time, shiftType shift.ShiftType) ([]slot.DailyAttendanceSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []slot.DailyAttendanceSlot{}
	for _, s := range r.slots {
		if s.IsAssignedTo(guardID) && sameDay(s.Date, date) && s.ShiftType == shiftType {
			out = append(out, r.read(s))
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *slotRepositoryImpl) Update(ctx context.Context, s slot.DailyAttendanceSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.slots[s.ID]
	if !ok {
		return slot.ErrSlotNotFound
	}
	existing.AssignedGuardID = s.AssignedGuardID
	existing.IsPresent = s.IsPresent
	existing.UpdatedAt = r.now()
	r.slots[s.ID] = cloneSlot(existing)
	return nil
}

func (r *slotRepositoryImpl) ClearPresentMarks(ctx context.Context, siteID string, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for id, s := range r.slots {
		if s.SiteID == siteID && sameDay(s.Date, date) && s.IsPresent != nil && *s.IsPresent {
			s.IsPresent = nil
			s.UpdatedAt = r.now()
			r.slots[id] = s
			cleared++
		}
	}
	return cleared, nil
}

func (r *slotRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return slot.ErrSlotNotFound
	}
	delete(r.slots, id)
	return nil
}

func sortSlots(slots []slot.DailyAttendanceSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.ShiftType != b.ShiftType {
			return a.ShiftType < b.ShiftType
		}
		if a.IsTemporary != b.IsTemporary {
			return !a.IsTemporary
		}
		if a.RoleType != b.RoleType {
			return a.RoleType < b.RoleType
		}
		return a.SlotNumber < b.SlotNumber
	})
}
