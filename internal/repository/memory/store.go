// Package memory keeps every entity in process maps. It backs APP_STORE=memory and the service
// tests. Writes are not transactional across repositories.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
)

type Store struct {
	mu sync.RWMutex

	sites      map[string]site.Site
	guards     map[string]guard.Guard
	shifts     map[string]shift.Shift
	slots      map[string]slot.DailyAttendanceSlot
	attendance map[string]attendance.AttendanceRecord
	payments   map[string]payment.PaymentRecord

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		sites:      make(map[string]site.Site),
		guards:     make(map[string]guard.Guard),
		shifts:     make(map[string]shift.Shift),
		slots:      make(map[string]slot.DailyAttendanceSlot),
		attendance: make(map[string]attendance.AttendanceRecord),
		payments:   make(map[string]payment.PaymentRecord),
		now:        time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (s *Store) guardName(id string) *string {
	g, ok := s.guards[id]
	if !ok {
		return nil
	}
	name := g.Name
	return &name
}

func (s *Store) siteName(id string) *string {
	st, ok := s.sites[id]
	if !ok {
		return nil
	}
	name := st.Name
	return &name
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
