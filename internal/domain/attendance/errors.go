package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// Conflict errors
	ErrGuardPresentElsewhere = errors.New("guard is already marked present at another site for this date and shift")
	ErrCapacityExceeded      = errors.New("all slots for this shift are already filled")

	// Rule errors
	ErrGuardNotAssigned       = errors.New("guard is not assigned to this site and shift")
	ErrReplacementRequired    = errors.New("replacement_guard_id is required for replaced status")
	ErrReassignedSiteRequired = errors.New("reassigned_site_id is required for reassigned status")
	ErrInvalidStatusChange    = errors.New("only present or absent records can be replaced or reassigned")
)
