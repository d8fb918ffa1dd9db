package memory

import (
	"context"
	"sort"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/pkg/utils"
)

type attendanceRepositoryImpl struct {
	*Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{Store: store}
}

func (r *attendanceRepositoryImpl) read(a attendance.AttendanceRecord) attendance.AttendanceRecord {
	a.GuardName = r.guardName(a.GuardID)
	a.SiteName = r.siteName(a.SiteID)
	return a
}

// presentConflict mirrors the partial unique index on (guard_id, date, shift_type) WHERE status = 'present'.
func (r *attendanceRepositoryImpl) presentConflict(a attendance.AttendanceRecord) bool {
	if !a.IsPresent() {
		return false
	}
	for _, existing := range r.attendance {
		if existing.ID != a.ID && existing.IsPresent() && existing.GuardID == a.GuardID &&
			existing.ShiftType == a.ShiftType && sameDay(existing.Date, a.Date) {
			return true
		}
	}
	return false
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.Date = utils.DateOnly(a.Date)
	if r.presentConflict(a) {
		return attendance.AttendanceRecord{}, attendance.ErrGuardPresentElsewhere
	}

	now := r.now()
	a.ID = newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.GuardName, a.SiteName = nil, nil
	r.attendance[a.ID] = a
	return r.read(a), nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.attendance[id]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return r.read(a), nil
}

func (r *attendanceRepositoryImpl) find(match func(attendance.AttendanceRecord) bool) *attendance.AttendanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.attendance {
		if match(a) {
			found := r.read(a)
			return &found
		}
	}
	return nil
}

func (r *attendanceRepositoryImpl) FindOne(ctx context.Context, guardID, siteID string, date time.Time, shiftType shift.ShiftType) (*attendance.AttendanceRecord, error) {
	return r.find(func(a attendance.AttendanceRecord) bool {
		return a.GuardID == guardID && a.SiteID == siteID && a.ShiftType == shiftType && sameDay(a.Date, date)
	}), nil
}

func (r *attendanceRepositoryImpl) FindBySlot(ctx context.Context, slotID string) (*attendance.AttendanceRecord, error) {
	return r.find(func(a attendance.AttendanceRecord) bool {
		return a.SlotID != nil && *a.SlotID == slotID
	}), nil
}

func (r *attendanceRepositoryImpl) FindPresentElsewhere(ctx context.Context, guardID string, date time.Time, shiftType shift.ShiftType, excludeSiteID string) (*attendance.AttendanceRecord, error) {
	return r.find(func(a attendance.AttendanceRecord) bool {
		return a.IsPresent() && a.GuardID == guardID && a.SiteID != excludeSiteID &&
			a.ShiftType == shiftType && sameDay(a.Date, date)
	}), nil
}

func (r *attendanceRepositoryImpl) CountPresent(ctx context.Context, siteID string, date time.Time, shiftType shift.ShiftType) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, a := range r.attendance {
		if a.IsPresent() && !a.IsTemporary && a.SiteID == siteID && a.ShiftType == shiftType && sameDay(a.Date, date) {
			count++
		}
	}
	return count, nil
}

func (r *attendanceRepositoryImpl) List(ctx context.Context, q attendance.RecordQuery) ([]attendance.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []attendance.AttendanceRecord{}
	for _, a := range r.attendance {
		switch {
		case q.SiteID != nil && a.SiteID != *q.SiteID,
			q.GuardID != nil && a.GuardID != *q.GuardID,
			q.Date != nil && !sameDay(a.Date, *q.Date),
			q.StartDate != nil && a.Date.Before(utils.DateOnly(*q.StartDate)),
			q.EndDate != nil && a.Date.After(utils.DateOnly(*q.EndDate)),
			q.ShiftType != nil && a.ShiftType != *q.ShiftType,
			q.Status != nil && a.Status != *q.Status:
			continue
		}
		out = append(out, r.read(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].ShiftType != out[j].ShiftType {
			return out[i].ShiftType < out[j].ShiftType
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.attendance[a.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	a.Date = utils.DateOnly(a.Date)
	if r.presentConflict(a) {
		return attendance.ErrGuardPresentElsewhere
	}

	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = r.now()
	a.GuardName, a.SiteName = nil, nil
	r.attendance[a.ID] = a
	return nil
}

func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.attendance[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.attendance, id)
	return nil
}

func (r *attendanceRepositoryImpl) DeletePresentBySiteDate(ctx context.Context, siteID string, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, a := range r.attendance {
		if a.IsPresent() && a.SiteID == siteID && sameDay(a.Date, date) {
			delete(r.attendance, id)
			deleted++
		}
	}
	return deleted, nil
}
