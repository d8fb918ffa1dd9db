package slot

import "errors"

var (
	ErrSlotNotFound = errors.New("attendance slot not found")
	ErrSlotExists   = errors.New("attendance slot already exists")

	// Conflict errors
	ErrSlotOccupied           = errors.New("slot is already assigned to another guard")
	ErrGuardAssignedElsewhere = errors.New("guard is already assigned at another site for this date and shift")
	ErrGuardAlreadyOnBoard    = errors.New("guard already holds another slot at this site for this date and shift")

	ErrSlotNotAssigned = errors.New("slot has no assigned guard")
	ErrNoPreviousSlots = errors.New("no assigned slots found on the previous date")
	ErrSameDateCopy    = errors.New("source and target dates must differ")
)
