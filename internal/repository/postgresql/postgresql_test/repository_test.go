package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, setup *TestDatabaseSetup) (site.Site, site.Site, guard.Guard) {
	t.Helper()
	ctx := context.Background()
	sites := postgresql.NewSiteRepository(setup.DB)
	guards := postgresql.NewGuardRepository(setup.DB)

	x, err := sites.Create(ctx, site.Site{
		Name: "Site X", Address: "1 Pier",
		StaffingSlots: []site.StaffingSlot{{Role: "Security Guard", DaySlots: 2, NightSlots: 1, RatePerSlot: decimal.NewFromInt(20000), RateType: site.RateTypeMonthly}},
	})
	require.NoError(t, err)
	y, err := sites.Create(ctx, site.Site{Name: "Site Y", Address: "2 Pier", DaySlots: 1, PayRate: decimal.NewFromInt(15000)})
	require.NoError(t, err)
	g, err := guards.Create(ctx, guard.Guard{Name: "Amos", BadgeNumber: "G-001", Status: guard.StatusActive, Type: guard.TypePermanent, PayRate: decimal.NewFromInt(30000)})
	require.NoError(t, err)
	return x, y, g
}

func TestSiteRepository_RoundTrip(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	x, _, _ := seed(t, setup)
	sites := postgresql.NewSiteRepository(setup.DB)

	found, err := sites.GetByID(ctx, x.ID)
	require.NoError(t, err)
	require.Len(t, found.StaffingSlots, 1)
	assert.Equal(t, 2, found.Capacity(shift.ShiftTypeDay))
	assert.True(t, decimal.NewFromInt(20000).Equal(found.StaffingSlots[0].RatePerSlot))

	_, err = sites.Create(ctx, site.Site{Name: "site x", Address: "elsewhere"})
	assert.ErrorIs(t, err, site.ErrSiteNameExists)

	_, err = sites.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, site.ErrSiteNotFound)

	all, total, err := sites.List(ctx, site.SiteFilter{SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestGuardRepository_BadgeUnique(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	_, _, g := seed(t, setup)
	guards := postgresql.NewGuardRepository(setup.DB)

	_, err := guards.Create(ctx, guard.Guard{Name: "Bela", BadgeNumber: "G-001", Status: guard.StatusActive, Type: guard.TypeContract})
	assert.ErrorIs(t, err, guard.ErrBadgeNumberExists)

	exists, err := guards.ExistsByBadgeNumber(ctx, "G-001", &g.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := guards.GetByIDs(ctx, []string{g.ID})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := guards.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestShiftRepository_ReplaceForSite(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	x, _, g := seed(t, setup)
	shifts := postgresql.NewShiftRepository(setup.DB)

	_, err := shifts.Create(ctx, shift.Shift{SiteID: x.ID, GuardID: g.ID, Type: shift.ShiftTypeDay})
	require.NoError(t, err)

	// the second guard ID does not exist, so the whole replace rolls back
	_, err = shifts.ReplaceForSite(ctx, x.ID, shift.ShiftTypeDay, []string{g.ID, "00000000-0000-7000-8000-000000000000"})
	require.Error(t, err)

	kept, err := shifts.ListBySite(ctx, x.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	require.NotNil(t, kept[0].GuardName)
	assert.Equal(t, "Amos", *kept[0].GuardName)

	replaced, err := shifts.ReplaceForSite(ctx, x.ID, shift.ShiftTypeDay, nil)
	require.NoError(t, err)
	assert.Empty(t, replaced)
}

func TestAttendanceRepository_PresentOnceAcrossSites(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	x, y, g := seed(t, setup)
	records := postgresql.NewAttendanceRepository(setup.DB)

	first, err := records.Create(ctx, attendance.AttendanceRecord{Date: day, SiteID: x.ID, GuardID: g.ID, ShiftType: shift.ShiftTypeDay, Status: attendance.StatusPresent})
	require.NoError(t, err)
	require.NotNil(t, first.SiteName)
	assert.Equal(t, "Site X", *first.SiteName)

	_, err = records.Create(ctx, attendance.AttendanceRecord{Date: day, SiteID: y.ID, GuardID: g.ID, ShiftType: shift.ShiftTypeDay, Status: attendance.StatusPresent})
	assert.ErrorIs(t, err, attendance.ErrGuardPresentElsewhere)

	absent, err := records.Create(ctx, attendance.AttendanceRecord{Date: day, SiteID: y.ID, GuardID: g.ID, ShiftType: shift.ShiftTypeDay, Status: attendance.StatusAbsent})
	require.NoError(t, err)

	absent.Status = attendance.StatusPresent
	assert.ErrorIs(t, records.Update(ctx, absent), attendance.ErrGuardPresentElsewhere)

	elsewhere, err := records.FindPresentElsewhere(ctx, g.ID, day, shift.ShiftTypeDay, y.ID)
	require.NoError(t, err)
	require.NotNil(t, elsewhere)
	assert.Equal(t, first.ID, elsewhere.ID)

	count, err := records.CountPresent(ctx, x.ID, day, shift.ShiftTypeDay)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	deleted, err := records.DeletePresentBySiteDate(ctx, x.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSlotRepository_UniquePosition(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	x, _, g := seed(t, setup)
	slots := postgresql.NewSlotRepository(setup.DB)

	position := slot.DailyAttendanceSlot{SiteID: x.ID, Date: day, ShiftType: shift.ShiftTypeDay, RoleType: site.DefaultRole, SlotNumber: 1}
	created, err := slots.Create(ctx, position)
	require.NoError(t, err)
	_, err = slots.Create(ctx, position)
	assert.ErrorIs(t, err, slot.ErrSlotExists)

	position.IsTemporary = true
	_, err = slots.Create(ctx, position)
	require.NoError(t, err)

	present := true
	created.AssignedGuardID = &g.ID
	created.IsPresent = &present
	require.NoError(t, slots.Update(ctx, created))

	held, err := slots.ListByGuardDate(ctx, g.ID, day, shift.ShiftTypeDay)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, slot.StatePresent, held[0].State())

	cleared, err := slots.ClearPresentMarks(ctx, x.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	board, err := slots.ListBySiteDate(ctx, x.ID, day)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.False(t, board[0].IsTemporary)
	assert.Equal(t, slot.StateAssigned, board[0].State())
}

func TestPaymentRepository_ListByMonth(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	_, _, g := seed(t, setup)
	payments := postgresql.NewPaymentRepository(setup.DB)

	_, err := payments.Create(ctx, payment.PaymentRecord{GuardID: g.ID, Date: day, Amount: decimal.NewFromInt(500), Type: payment.PaymentTypeBonus, Month: "2024-01"})
	require.NoError(t, err)
	_, err = payments.Create(ctx, payment.PaymentRecord{GuardID: g.ID, Date: day.AddDate(0, 1, 0), Amount: decimal.NewFromInt(200), Type: payment.PaymentTypeDeduction, Month: "2024-02"})
	require.NoError(t, err)

	month := "2024-01"
	jan, err := payments.List(ctx, payment.PaymentQuery{GuardID: &g.ID, Month: &month})
	require.NoError(t, err)
	require.Len(t, jan, 1)
	assert.True(t, decimal.NewFromInt(500).Equal(jan[0].Amount))

	require.NoError(t, payments.Delete(ctx, jan[0].ID))
	assert.ErrorIs(t, payments.Delete(ctx, jan[0].ID), payment.ErrPaymentNotFound)
}
