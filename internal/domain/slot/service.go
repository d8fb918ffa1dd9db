package slot

import "context"

type SlotService interface {
	// Slot generation
	GenerateSlotsForDate(ctx context.Context, req SiteDateRequest) (BoardResponse, error)
	RegenerateSlotsForDate(ctx context.Context, req SiteDateRequest) (RegenerateResponse, error)
	CopySlotsFromPreviousDay(ctx context.Context, req CopySlotsRequest) (CopySlotsResponse, error)
	GetBoard(ctx context.Context, req SiteDateRequest) (BoardResponse, error)

	// Assignment
	AssignGuardToSlot(ctx context.Context, req AssignGuardRequest) (SlotResponse, error)
	UnassignGuardFromSlot(ctx context.Context, slotID string) (SlotResponse, error)

	// Attendance
	MarkSlotAttendance(ctx context.Context, req MarkSlotRequest) (SlotResponse, error)

	// Temporary slots
	CreateTemporarySlot(ctx context.Context, req CreateTemporarySlotRequest) (SlotResponse, error)
	DeleteSlot(ctx context.Context, slotID string) error
}
