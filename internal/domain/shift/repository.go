package shift

import "context"

type ShiftRepository interface {
	Create(ctx context.Context, shift Shift) (Shift, error)
	GetByID(ctx context.Context, id string) (Shift, error)
	ListBySite(ctx context.Context, siteID string) ([]Shift, error)
	ListByGuard(ctx context.Context, guardID string) ([]Shift, error)

	// FindBySiteGuardType returns nil when the guard holds no such shift at the site
	FindBySiteGuardType(ctx context.Context, siteID, guardID string, shiftType ShiftType) (*Shift, error)

	Delete(ctx context.Context, id string) error

	// ReplaceForSite deletes every shift of shiftType at the site and inserts one per guard.
	// Implementations without a transactional store run the two steps as separate writes, so a
	// failure between them can leave the site with no shifts of that type. Re-running the call
	// with the same arguments converges to the requested state.
	ReplaceForSite(ctx context.Context, siteID string, shiftType ShiftType, guardIDs []string) ([]Shift, error)
}
