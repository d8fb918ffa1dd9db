package shift

import "context"

// ShiftService holds the standing-assignment rules
type ShiftService interface {
	// CreateShift binds a guard to a site for a shift type, rejecting cross-site overlaps
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)

	ListSiteShifts(ctx context.Context, siteID string) ([]ShiftResponse, error)

	DeleteShift(ctx context.Context, id string) error

	// AllocateGuards replaces the full guard set of one shift type at a site
	AllocateGuards(ctx context.Context, req AllocateGuardsRequest) (AllocateGuardsResponse, error)

	// ClearShifts removes every shift of one type at a site
	ClearShifts(ctx context.Context, siteID string, shiftType ShiftType) error
}
