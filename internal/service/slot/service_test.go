package slot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/repository/memory"
	attendanceservice "github.com/guardline/roster-backend/internal/service/attendance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) BoardChanged(ctx context.Context, siteID string, date time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, siteID+"@"+date.Format("2006-01-02"))
}

type fixture struct {
	ctx            context.Context
	service        slot.SlotService
	slotRepo       slot.SlotRepository
	siteRepo       site.SiteRepository
	guardRepo      guard.GuardRepository
	attendanceRepo attendance.AttendanceRepository
	observer       *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		ctx:            context.Background(),
		slotRepo:       memory.NewSlotRepository(store),
		siteRepo:       memory.NewSiteRepository(store),
		guardRepo:      memory.NewGuardRepository(store),
		attendanceRepo: memory.NewAttendanceRepository(store),
		observer:       &recordingObserver{},
	}
	rules := attendanceservice.NewRules(f.attendanceRepo, f.slotRepo)
	f.service = NewSlotService(f.slotRepo, f.attendanceRepo, f.siteRepo, f.guardRepo, rules, f.observer)
	return f
}

func (f *fixture) site(t *testing.T, name string, day, night int) site.Site {
	t.Helper()
	s, err := f.siteRepo.Create(f.ctx, site.Site{Name: name, Address: "1 Main St", DaySlots: day, NightSlots: night, PayRate: decimal.NewFromInt(30000)})
	require.NoError(t, err)
	return s
}

func (f *fixture) guard(t *testing.T, name, badge string) guard.Guard {
	t.Helper()
	g, err := f.guardRepo.Create(f.ctx, guard.Guard{Name: name, BadgeNumber: badge, Status: guard.StatusActive, Type: guard.TypePermanent, PayRate: decimal.NewFromInt(30000)})
	require.NoError(t, err)
	return g
}

func (f *fixture) board(t *testing.T, siteID, date string) slot.BoardResponse {
	t.Helper()
	b, err := f.service.GenerateSlotsForDate(f.ctx, slot.SiteDateRequest{SiteID: siteID, Date: date})
	require.NoError(t, err)
	return b
}

func (f *fixture) assign(t *testing.T, slotID, guardID string) {
	t.Helper()
	_, err := f.service.AssignGuardToSlot(f.ctx, slot.AssignGuardRequest{SlotID: slotID, GuardID: guardID})
	require.NoError(t, err)
}

func (f *fixture) mark(slotID string, present bool) (slot.SlotResponse, error) {
	return f.service.MarkSlotAttendance(f.ctx, slot.MarkSlotRequest{SlotID: slotID, IsPresent: &present})
}

func (f *fixture) presentRecords(t *testing.T, guardID string) []attendance.AttendanceRecord {
	t.Helper()
	status := attendance.StatusPresent
	records, err := f.attendanceRepo.List(f.ctx, attendance.RecordQuery{GuardID: &guardID, Status: &status})
	require.NoError(t, err)
	return records
}

func TestGenerateSlotsForDate_Idempotent(t *testing.T) {
	f := newFixture(t)
	s := f.site(t, "Harbour", 2, 1)

	first := f.board(t, s.ID, "2024-01-10")
	assert.Len(t, first.Day, 2)
	assert.Len(t, first.Night, 1)
	assert.Equal(t, 2, first.DaySummary.Capacity)
	assert.Equal(t, 1, first.Day[0].SlotNumber)
	assert.Equal(t, 2, first.Day[1].SlotNumber)
	assert.Equal(t, string(slot.StateEmpty), first.Day[0].State)

	second := f.board(t, s.ID, "2024-01-10")
	assert.Len(t, second.Day, 2)
	assert.Equal(t, first.Day[0].ID, second.Day[0].ID)
	assert.Len(t, f.observer.events, 1)
}

func TestGenerateSlotsForDate_EmptyStaffing(t *testing.T) {
	f := newFixture(t)
	s := f.site(t, "Vacant Lot", 0, 0)

	b := f.board(t, s.ID, "2024-01-10")
	assert.Empty(t, b.Day)
	assert.Empty(t, b.Night)
}

func TestGenerateSlotsForDate_UnknownSite(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.GenerateSlotsForDate(f.ctx, slot.SiteDateRequest{SiteID: "missing", Date: "2024-01-10"})
	assert.ErrorIs(t, err, site.ErrSiteNotFound)
}

func TestRegenerateSlotsForDate_AddsMissingAndReportsExcess(t *testing.T) {
	f := newFixture(t)
	s := f.site(t, "Harbour", 3, 0)
	b := f.board(t, s.ID, "2024-01-10")
	a := f.guard(t, "Amos", "G-001")
	f.assign(t, b.Day[2].ID, a.ID)

	// staffing shrinks to 1 day slot and gains a night slot
	s.DaySlots, s.NightSlots = 1, 1
	require.NoError(t, f.siteRepo.Update(f.ctx, s))

	resp, err := f.service.RegenerateSlotsForDate(f.ctx, slot.SiteDateRequest{SiteID: s.ID, Date: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	require.Len(t, resp.Excess, 2)
	assert.Len(t, resp.Board.Day, 3, "excess slots are kept")
	assert.Len(t, resp.Board.Night, 1)

	var assignedKept bool
	for _, e := range resp.Excess {
		if e.AssignedGuardID != nil && *e.AssignedGuardID == a.ID {
			assignedKept = true
		}
	}
	assert.True(t, assignedKept)
}

func TestAssignGuardToSlot_ConflictAcrossSites(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	y := f.site(t, "Site Y", 1, 0)
	a := f.guard(t, "Amos", "G-001")

	bx := f.board(t, x.ID, "2024-01-10")
	by := f.board(t, y.ID, "2024-01-10")
	f.assign(t, bx.Day[0].ID, a.ID)

	_, err := f.service.AssignGuardToSlot(f.ctx, slot.AssignGuardRequest{SlotID: by.Day[0].ID, GuardID: a.ID})
	assert.ErrorIs(t, err, slot.ErrGuardAssignedElsewhere)

	got, err := f.slotRepo.GetByID(f.ctx, by.Day[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedGuardID)

	// a different date is free
	by2 := f.board(t, y.ID, "2024-01-11")
	f.assign(t, by2.Day[0].ID, a.ID)
}

func TestAssignGuardToSlot_Rules(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2, 0)
	a := f.guard(t, "Amos", "G-001")
	b := f.guard(t, "Bela", "G-002")
	b.Status = guard.StatusInactive
	require.NoError(t, f.guardRepo.Update(f.ctx, b))

	board := f.board(t, x.ID, "2024-01-10")
	f.assign(t, board.Day[0].ID, a.ID)

	// assigning the same guard again is a no-op
	f.assign(t, board.Day[0].ID, a.ID)

	_, err := f.service.AssignGuardToSlot(f.ctx, slot.AssignGuardRequest{SlotID: board.Day[1].ID, GuardID: a.ID})
	assert.ErrorIs(t, err, slot.ErrGuardAlreadyOnBoard)

	_, err = f.service.AssignGuardToSlot(f.ctx, slot.AssignGuardRequest{SlotID: board.Day[1].ID, GuardID: b.ID})
	assert.ErrorIs(t, err, guard.ErrGuardInactive)

	c := f.guard(t, "Cato", "G-003")
	_, err = f.service.AssignGuardToSlot(f.ctx, slot.AssignGuardRequest{SlotID: board.Day[0].ID, GuardID: c.ID})
	assert.ErrorIs(t, err, slot.ErrSlotOccupied)
}

func TestMarkSlotAttendance_Idempotent(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	a := f.guard(t, "Amos", "G-001")
	board := f.board(t, x.ID, "2024-01-10")
	f.assign(t, board.Day[0].ID, a.ID)

	first, err := f.mark(board.Day[0].ID, true)
	require.NoError(t, err)
	second, err := f.mark(board.Day[0].ID, true)
	require.NoError(t, err)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, string(slot.StatePresent), second.State)
	assert.Len(t, f.presentRecords(t, a.ID), 1)
}

func TestMarkSlotAttendance_RequiresAssignment(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	board := f.board(t, x.ID, "2024-01-10")

	_, err := f.mark(board.Day[0].ID, true)
	assert.ErrorIs(t, err, slot.ErrSlotNotAssigned)
}

func TestMarkSlotAttendance_ToggleAbsentClearsRecord(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	a := f.guard(t, "Amos", "G-001")
	board := f.board(t, x.ID, "2024-01-10")
	f.assign(t, board.Day[0].ID, a.ID)

	_, err := f.mark(board.Day[0].ID, true)
	require.NoError(t, err)
	absent, err := f.mark(board.Day[0].ID, false)
	require.NoError(t, err)
	assert.Equal(t, string(slot.StateAbsent), absent.State)
	assert.Empty(t, f.presentRecords(t, a.ID))

	present, err := f.mark(board.Day[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, string(slot.StatePresent), present.State)
	assert.Len(t, f.presentRecords(t, a.ID), 1)
}

func TestUnassignGuardFromSlot_Cascades(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	a := f.guard(t, "Amos", "G-001")
	board := f.board(t, x.ID, "2024-01-10")
	f.assign(t, board.Day[0].ID, a.ID)
	_, err := f.mark(board.Day[0].ID, true)
	require.NoError(t, err)

	resp, err := f.service.UnassignGuardFromSlot(f.ctx, board.Day[0].ID)
	require.NoError(t, err)
	assert.Nil(t, resp.AssignedGuardID)
	assert.Nil(t, resp.IsPresent)
	assert.Equal(t, string(slot.StateEmpty), resp.State)

	records, err := f.attendanceRepo.List(f.ctx, attendance.RecordQuery{GuardID: &a.ID})
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = f.service.UnassignGuardFromSlot(f.ctx, board.Day[0].ID)
	assert.ErrorIs(t, err, slot.ErrSlotNotAssigned)
}

func TestMarkSlotAttendance_CapacityRespected(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2, 0)
	board := f.board(t, x.ID, "2024-01-10")
	a := f.guard(t, "Amos", "G-001")
	b := f.guard(t, "Bela", "G-002")
	c := f.guard(t, "Cato", "G-003")
	f.assign(t, board.Day[0].ID, a.ID)
	f.assign(t, board.Day[1].ID, b.ID)
	_, err := f.mark(board.Day[0].ID, true)
	require.NoError(t, err)
	_, err = f.mark(board.Day[1].ID, true)
	require.NoError(t, err)

	// shrink the plan to one slot: the board keeps two regular slots but capacity is one
	x.DaySlots = 1
	require.NoError(t, f.siteRepo.Update(f.ctx, x))
	_, err = f.mark(board.Day[1].ID, false)
	require.NoError(t, err)
	_, err = f.mark(board.Day[1].ID, true)
	assert.ErrorIs(t, err, attendance.ErrCapacityExceeded)

	count, err := f.attendanceRepo.CountPresent(f.ctx, x.ID, mustDate("2024-01-10"), shift.ShiftTypeDay)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// a temporary slot is outside capacity accounting
	temp, err := f.service.CreateTemporarySlot(f.ctx, slot.CreateTemporarySlotRequest{
		SiteID: x.ID, Date: "2024-01-10", ShiftType: "day", RoleType: "Event Guard",
		PayRate: decimal.NewFromInt(1500), GuardID: &c.ID,
	})
	require.NoError(t, err)
	assert.True(t, temp.IsTemporary)
	_, err = f.mark(temp.ID, true)
	require.NoError(t, err)

	records := f.presentRecords(t, c.ID)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsTemporary)
	require.NotNil(t, records[0].PayRate)
	assert.True(t, decimal.NewFromInt(1500).Equal(*records[0].PayRate))
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCopySlotsFromPreviousDay_AssignsAndMarksPresent(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2, 1)
	y := f.site(t, "Site Y", 1, 0)
	a := f.guard(t, "Amos", "G-001")
	b := f.guard(t, "Bela", "G-002")
	c := f.guard(t, "Cato", "G-003")

	prev := f.board(t, x.ID, "2024-01-09")
	f.assign(t, prev.Day[0].ID, a.ID)
	f.assign(t, prev.Day[1].ID, b.ID)
	f.assign(t, prev.Night[0].ID, c.ID)

	// Bela already works Site Y on the target date
	by := f.board(t, y.ID, "2024-01-10")
	f.assign(t, by.Day[0].ID, b.ID)
	_, err := f.mark(by.Day[0].ID, true)
	require.NoError(t, err)

	resp, err := f.service.CopySlotsFromPreviousDay(f.ctx, slot.CopySlotsRequest{SiteID: x.ID, Date: "2024-01-10", PreviousDate: "2024-01-09"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Copied)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, b.ID, resp.Details[0].GuardID)

	assert.Equal(t, string(slot.StatePresent), resp.Board.Day[0].State)
	assert.Equal(t, string(slot.StateEmpty), resp.Board.Day[1].State)
	assert.Equal(t, string(slot.StatePresent), resp.Board.Night[0].State)
	assert.Equal(t, 1, resp.Board.DaySummary.Present)

	assert.Len(t, f.presentRecords(t, a.ID), 1)
	assert.Len(t, f.presentRecords(t, c.ID), 1)
}

func TestCopySlotsFromPreviousDay_NothingToCopy(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	f.board(t, x.ID, "2024-01-09")

	_, err := f.service.CopySlotsFromPreviousDay(f.ctx, slot.CopySlotsRequest{SiteID: x.ID, Date: "2024-01-10", PreviousDate: "2024-01-09"})
	assert.ErrorIs(t, err, slot.ErrNoPreviousSlots)

	_, err = f.service.CopySlotsFromPreviousDay(f.ctx, slot.CopySlotsRequest{SiteID: x.ID, Date: "2024-01-10", PreviousDate: "2024-01-10"})
	assert.Error(t, err)
}

func TestCopySlotsFromPreviousDay_FillsPartialBoard(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2, 0)
	a := f.guard(t, "Amos", "G-001")
	b := f.guard(t, "Bela", "G-002")

	prev := f.board(t, x.ID, "2024-01-09")
	f.assign(t, prev.Day[0].ID, a.ID)
	f.assign(t, prev.Day[1].ID, b.ID)

	// the target date only has the first position
	first, err := f.slotRepo.GetByID(f.ctx, prev.Day[0].ID)
	require.NoError(t, err)
	first.ID, first.Date, first.AssignedGuardID, first.IsPresent, first.GuardName = "", mustDate("2024-01-10"), nil, nil, nil
	_, err = f.slotRepo.Create(f.ctx, first)
	require.NoError(t, err)

	resp, err := f.service.CopySlotsFromPreviousDay(f.ctx, slot.CopySlotsRequest{SiteID: x.ID, Date: "2024-01-10", PreviousDate: "2024-01-09"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Copied)
	assert.Zero(t, resp.Skipped)
	require.Len(t, resp.Board.Day, 2)
	assert.Equal(t, string(slot.StatePresent), resp.Board.Day[0].State)
	assert.Equal(t, string(slot.StatePresent), resp.Board.Day[1].State)
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

func TestCopySlotsFromPreviousDay_StoreFailuresAreNotSkips(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 2, 0)
	a := f.guard(t, "Amos", "G-001")
	b := f.guard(t, "Bela", "G-002")

	prev := f.board(t, x.ID, "2024-01-09")
	f.assign(t, prev.Day[0].ID, a.ID)
	f.assign(t, prev.Day[1].ID, b.ID)

	records := brokenRecords{AttendanceRepository: f.attendanceRepo, guardID: b.ID}
	rules := attendanceservice.NewRules(records, f.slotRepo)
	svc := NewSlotService(f.slotRepo, records, f.siteRepo, f.guardRepo, rules, f.observer)

	resp, err := svc.CopySlotsFromPreviousDay(f.ctx, slot.CopySlotsRequest{SiteID: x.ID, Date: "2024-01-10", PreviousDate: "2024-01-09"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Copied)
	assert.Zero(t, resp.Skipped)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, b.ID, resp.Failures[0].GuardID)

	// the failed copy leaves its slot empty
	assert.Equal(t, string(slot.StateEmpty), resp.Board.Day[1].State)
}

func TestDeleteSlot_UnassignsFirst(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 0, 0)
	a := f.guard(t, "Amos", "G-001")

	temp, err := f.service.CreateTemporarySlot(f.ctx, slot.CreateTemporarySlotRequest{
		SiteID: x.ID, Date: "2024-01-10", ShiftType: "night", RoleType: "Patrol", GuardID: &a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, temp.SlotNumber)
	_, err = f.mark(temp.ID, true)
	require.NoError(t, err)

	second, err := f.service.CreateTemporarySlot(f.ctx, slot.CreateTemporarySlotRequest{
		SiteID: x.ID, Date: "2024-01-10", ShiftType: "night", RoleType: "Patrol",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.SlotNumber)

	require.NoError(t, f.service.DeleteSlot(f.ctx, temp.ID))

	_, err = f.slotRepo.GetByID(f.ctx, temp.ID)
	assert.ErrorIs(t, err, slot.ErrSlotNotFound)
	records, err := f.attendanceRepo.List(f.ctx, attendance.RecordQuery{GuardID: &a.ID})
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.ErrorIs(t, f.service.DeleteSlot(f.ctx, temp.ID), slot.ErrSlotNotFound)
}

func TestCreateTemporarySlot_RejectedAssignmentLeavesNoSlot(t *testing.T) {
	f := newFixture(t)
	x := f.site(t, "Site X", 1, 0)
	y := f.site(t, "Site Y", 0, 0)
	a := f.guard(t, "Amos", "G-001")
	bx := f.board(t, x.ID, "2024-01-10")
	f.assign(t, bx.Day[0].ID, a.ID)

	_, err := f.service.CreateTemporarySlot(f.ctx, slot.CreateTemporarySlotRequest{
		SiteID: y.ID, Date: "2024-01-10", ShiftType: "day", RoleType: "Patrol", GuardID: &a.ID,
	})
	assert.ErrorIs(t, err, slot.ErrGuardAssignedElsewhere)

	board, err := f.service.GetBoard(f.ctx, slot.SiteDateRequest{SiteID: y.ID, Date: "2024-01-10"})
	require.NoError(t, err)
	assert.Empty(t, board.Day)
}
