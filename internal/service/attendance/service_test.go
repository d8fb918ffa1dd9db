package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx            context.Context
	service        attendance.AttendanceService
	attendanceRepo attendance.AttendanceRepository
	shiftRepo      shift.ShiftRepository
	slotRepo       slot.SlotRepository
	siteRepo       site.SiteRepository
	guardRepo      guard.GuardRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		ctx:            context.Background(),
		attendanceRepo: memory.NewAttendanceRepository(store),
		shiftRepo:      memory.NewShiftRepository(store),
		slotRepo:       memory.NewSlotRepository(store),
		siteRepo:       memory.NewSiteRepository(store),
		guardRepo:      memory.NewGuardRepository(store),
	}
	rules := NewRules(f.attendanceRepo, f.slotRepo)
	f.service = NewAttendanceService(f.attendanceRepo, f.shiftRepo, f.slotRepo, f.siteRepo, f.guardRepo, rules, nil)
	return f
}

func (f *fixture) site(t *testing.T, name string, day int) site.Site {
	t.Helper()
	s, err := f.siteRepo.Create(f.ctx, site.Site{Name: name, Address: "1 Main St", DaySlots: day, NightSlots: 1, PayRate: decimal.NewFromInt(30000)})
	require.NoError(t, err)
	return s
}

// rostered creates an active guard holding a standing day shift at each given site.
func (f *fixture) rostered(t *testing.T, name, badge string, siteIDs ...string) guard.Guard {
	t.Helper()
	g, err := f.guardRepo.Create(f.ctx, guard.Guard{Name: name, BadgeNumber: badge, Status: guard.StatusActive, Type: guard.TypePermanent, PayRate: decimal.NewFromInt(30000)})
	require.NoError(t, err)
	for _, siteID := range siteIDs {
		_, err := f.shiftRepo.Create(f.ctx, shift.Shift{SiteID: siteID, GuardID: g.ID, Type: shift.ShiftTypeDay})
		require.NoError(t, err)
	}
	return g
}

func (f *fixture) mark(siteID, guardID, date string, present bool) (attendance.AttendanceResponse, error) {
	return f.service.MarkAttendance(f.ctx, attendance.MarkAttendanceRequest{
		Date:      date,
		SiteID:    siteID,
		GuardID:   guardID,
		ShiftType: string(shift.ShiftTypeDay),
		IsPresent: &present,
	})
}

func (f *fixture) presentCount(t *testing.T, guardID string) int {
	t.Helper()
	status := attendance.StatusPresent
	records, err := f.attendanceRepo.List(f.ctx, attendance.RecordQuery{GuardID: &guardID, Status: &status})
	require.NoError(t, err)
	return len(records)
}

func TestMarkAttendance_CapacityScenario(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2)
	a := f.rostered(t, "Amos", "G-001", x.ID)
	b := f.rostered(t, "Bela", "G-002", x.ID)
	c := f.rostered(t, "Cato", "G-003", x.ID)

	_, err := f.mark(x.ID, a.ID, "2024-01-10", true)
	require.NoError(t, err)
	_, err = f.mark(x.ID, b.ID, "2024-01-10", true)
	require.NoError(t, err)

	_, err = f.mark(x.ID, c.ID, "2024-01-10", true)
	assert.ErrorIs(t, err, attendance.ErrCapacityExceeded)
	assert.Equal(t, 0, f.presentCount(t, c.ID))

	_, err = f.mark(x.ID, a.ID, "2024-01-10", false)
	require.NoError(t, err)

	resp, err := f.mark(x.ID, c.ID, "2024-01-10", true)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
}

func TestMarkAttendance_PresentElsewhereScenario(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2)
	y := f.site(t, "Site Y", 2)
	a := f.rostered(t, "Amos", "G-001", x.ID, y.ID)

	first, err := f.mark(x.ID, a.ID, "2024-01-10", true)
	require.NoError(t, err)

	_, err = f.mark(y.ID, a.ID, "2024-01-10", true)
	assert.ErrorIs(t, err, attendance.ErrGuardPresentElsewhere)

	stillThere, err := f.attendanceRepo.GetByID(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, stillThere.Status)
	assert.Equal(t, x.ID, stillThere.SiteID)
	assert.Equal(t, 1, f.presentCount(t, a.ID))
}

func TestMarkAttendance_Idempotent(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1)
	a := f.rostered(t, "Amos", "G-001", x.ID)

	first, err := f.mark(x.ID, a.ID, "2024-01-10", true)
	require.NoError(t, err)
	second, err := f.mark(x.ID, a.ID, "2024-01-10", true)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.presentCount(t, a.ID))
}

func TestMarkAttendance_RequiresAssignment(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1)
	a := f.rostered(t, "Amos", "G-001")

	_, err := f.mark(x.ID, a.ID, "2024-01-10", true)
	assert.ErrorIs(t, err, attendance.ErrGuardNotAssigned)

	_, err = f.service.MarkAttendance(f.ctx, attendance.MarkAttendanceRequest{SiteID: x.ID, GuardID: a.ID, Date: "2024-01-10", ShiftType: "day"})
	assert.Error(t, err, "is_present is required")
}

func TestMarkAttendance_NoDoublePresence(t *testing.T) {
	f := newFixture(t)
	sites := []site.Site{f.site(t, "North", 3), f.site(t, "South", 3), f.site(t, "East", 3)}
	ids := []string{sites[0].ID, sites[1].ID, sites[2].ID}
	guards := []guard.Guard{
		f.rostered(t, "Amos", "G-001", ids...),
		f.rostered(t, "Bela", "G-002", ids...),
	}

	for _, g := range guards {
		for _, s := range sites {
			_, _ = f.mark(s.ID, g.ID, "2024-01-10", true)
			_, _ = f.mark(s.ID, g.ID, "2024-01-10", true)
		}
	}

	for _, g := range guards {
		assert.Equal(t, 1, f.presentCount(t, g.ID), g.Name)
	}
}

func TestUnmarkAttendance(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1)
	a := f.rostered(t, "Amos", "G-001", x.ID)

	resp, err := f.mark(x.ID, a.ID, "2024-01-10", false)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusAbsent), resp.Status)

	require.NoError(t, f.service.UnmarkAttendance(f.ctx, resp.ID))
	assert.ErrorIs(t, f.service.UnmarkAttendance(f.ctx, resp.ID), attendance.ErrAttendanceNotFound)
}

func TestBulkMarkAttendance_ReportsPerGuard(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2)
	a := f.rostered(t, "Amos", "G-001", x.ID)
	b := f.rostered(t, "Bela", "G-002", x.ID)
	c := f.rostered(t, "Cato", "G-003", x.ID)
	present := true

	resp, err := f.service.BulkMarkAttendance(f.ctx, attendance.BulkMarkRequest{
		Date: "2024-01-10", SiteID: x.ID, ShiftType: "day",
		GuardIDs: []string{a.ID, "missing", b.ID, c.ID}, IsPresent: &present,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 2, resp.FailureCount)
	require.Len(t, resp.Results, 4)
	assert.False(t, resp.Results[1].Success)
	assert.False(t, resp.Results[3].Success)
	assert.Contains(t, resp.Results[3].Error, attendance.ErrCapacityExceeded.Error())

	_, err = f.service.BulkMarkAttendance(f.ctx, attendance.BulkMarkRequest{Date: "2024-01-10", SiteID: x.ID, ShiftType: "day", IsPresent: &present})
	assert.Error(t, err)
}

func TestCopyAttendanceFromDate_SkipAccounting(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 5)
	y := f.site(t, "Site Y", 5)

	var guards []guard.Guard
	for i, name := range []string{"Amos", "Bela", "Cato", "Dana", "Egon"} {
		guards = append(guards, f.rostered(t, name, "G-00"+string(rune('1'+i)), x.ID, y.ID))
	}
	for _, g := range guards {
		_, err := f.mark(x.ID, g.ID, "2024-01-10", true)
		require.NoError(t, err)
	}

	// two guards are already working Site Y on the target date
	_, err := f.mark(y.ID, guards[1].ID, "2024-01-11", true)
	require.NoError(t, err)
	_, err = f.mark(y.ID, guards[3].ID, "2024-01-11", true)
	require.NoError(t, err)

	resp, err := f.service.CopyAttendanceFromDate(f.ctx, attendance.CopyAttendanceRequest{SiteID: x.ID, FromDate: "2024-01-10", ToDate: "2024-01-11"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Copied)
	assert.Equal(t, 2, resp.Skipped)
	require.Len(t, resp.Details, 2)

	skipped := map[string]bool{resp.Details[0].GuardID: true, resp.Details[1].GuardID: true}
	assert.True(t, skipped[guards[1].ID])
	assert.True(t, skipped[guards[3].ID])
}

// brokenRecords fails record creation for one guard the way a dropped connection would.
type brokenRecords struct {
	attendance.AttendanceRepository
	guardID string
}

func (r brokenRecords) Create(ctx context.Context, a attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if a.GuardID == r.guardID {
		return attendance.AttendanceRecord{}, errors.New("connection reset by peer")
	}
	return r.AttendanceRepository.Create(ctx, a)
}

func TestCopyAttendanceFromDate_StoreFailuresAreNotSkips(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 5)
	y := f.site(t, "Site Y", 5)
	a := f.rostered(t, "Amos", "G-001", x.ID, y.ID)
	b := f.rostered(t, "Bela", "G-002", x.ID, y.ID)
	c := f.rostered(t, "Cato", "G-003", x.ID, y.ID)
	for _, g := range []guard.Guard{a, b, c} {
		_, err := f.mark(x.ID, g.ID, "2024-01-10", true)
		require.NoError(t, err)
	}
	_, err := f.mark(y.ID, b.ID, "2024-01-11", true)
	require.NoError(t, err)

	records := brokenRecords{AttendanceRepository: f.attendanceRepo, guardID: c.ID}
	svc := NewAttendanceService(records, f.shiftRepo, f.slotRepo, f.siteRepo, f.guardRepo, NewRules(records, f.slotRepo), nil)

	resp, err := svc.CopyAttendanceFromDate(f.ctx, attendance.CopyAttendanceRequest{SiteID: x.ID, FromDate: "2024-01-10", ToDate: "2024-01-11"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Copied)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, b.ID, resp.Details[0].GuardID)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, c.ID, resp.Failures[0].GuardID)
	assert.Contains(t, resp.Failures[0].Reason, "connection reset")
}

func TestIsRuleOutcome(t *testing.T) {
	assert.True(t, IsRuleOutcome(fmt.Errorf("%w (2 of 2)", attendance.ErrCapacityExceeded)))
	assert.True(t, IsRuleOutcome(slot.ErrGuardAssignedElsewhere))
	assert.True(t, IsRuleOutcome(guard.ErrGuardInactive))
	assert.False(t, IsRuleOutcome(fmt.Errorf("failed to create attendance: %w", errors.New("timeout"))))
}

func TestResetAttendance_ClearsRecordsAndSlots(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2)
	a := f.rostered(t, "Amos", "G-001", x.ID)
	b := f.rostered(t, "Bela", "G-002")

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	sl, err := f.slotRepo.Create(f.ctx, slot.DailyAttendanceSlot{SiteID: x.ID, Date: date, ShiftType: shift.ShiftTypeDay, RoleType: site.DefaultRole, SlotNumber: 1, AssignedGuardID: &b.ID})
	require.NoError(t, err)

	_, err = f.mark(x.ID, a.ID, "2024-01-10", true)
	require.NoError(t, err)
	_, err = f.mark(x.ID, b.ID, "2024-01-10", true)
	require.NoError(t, err)

	marked, err := f.slotRepo.GetByID(f.ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.StatePresent, marked.State())

	resp, err := f.service.ResetAttendance(f.ctx, attendance.ResetAttendanceRequest{SiteID: x.ID, Date: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.DeletedRecords)
	assert.Equal(t, int64(1), resp.ClearedSlots)

	cleared, err := f.slotRepo.GetByID(f.ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.StateAssigned, cleared.State())
}

func TestUpdateAttendanceStatus(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2)
	y := f.site(t, "Site Y", 2)
	a := f.rostered(t, "Amos", "G-001", x.ID)
	b := f.rostered(t, "Bela", "G-002", y.ID)
	c := f.rostered(t, "Cato", "G-003")

	recA, err := f.mark(x.ID, a.ID, "2024-01-10", false)
	require.NoError(t, err)
	_, err = f.mark(y.ID, b.ID, "2024-01-10", true)
	require.NoError(t, err)

	// Bela is already present at Site Y
	_, err = f.service.UpdateAttendanceStatus(f.ctx, attendance.UpdateStatusRequest{ID: recA.ID, Status: "replaced", ReplacementGuardID: &b.ID})
	assert.ErrorIs(t, err, attendance.ErrGuardPresentElsewhere)

	_, err = f.service.UpdateAttendanceStatus(f.ctx, attendance.UpdateStatusRequest{ID: recA.ID, Status: "replaced"})
	assert.Error(t, err)

	ja := jwtauth.New("HS256", []byte("secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"user_id": "sup-1", "role": "supervisor"})
	require.NoError(t, err)
	ctx := jwtauth.NewContext(f.ctx, token, nil)

	updated, err := f.service.UpdateAttendanceStatus(ctx, attendance.UpdateStatusRequest{ID: recA.ID, Status: "replaced", ReplacementGuardID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusReplaced), updated.Status)
	require.NotNil(t, updated.ReplacementGuardID)
	assert.Equal(t, c.ID, *updated.ReplacementGuardID)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, "sup-1", *updated.ApprovedBy)
	assert.NotNil(t, updated.ApprovedAt)

	_, err = f.service.UpdateAttendanceStatus(f.ctx, attendance.UpdateStatusRequest{ID: recA.ID, Status: "reassigned", ReassignedSiteID: &y.ID})
	assert.ErrorIs(t, err, attendance.ErrInvalidStatusChange)
}

func TestListAttendance(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2)
	a := f.rostered(t, "Amos", "G-001", x.ID)
	_, err := f.mark(x.ID, a.ID, "2024-01-10", true)
	require.NoError(t, err)
	_, err = f.mark(x.ID, a.ID, "2024-01-11", true)
	require.NoError(t, err)

	date := "2024-01-11"
	list, err := f.service.ListAttendance(f.ctx, attendance.AttendanceFilter{SiteID: &x.ID, Date: &date})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].GuardName)
	assert.Equal(t, "Amos", *list[0].GuardName)

	_, err = f.service.ListAttendance(f.ctx, attendance.AttendanceFilter{})
	assert.Error(t, err)
}
