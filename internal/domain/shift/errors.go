package shift

import "errors"

var (
	ErrShiftNotFound = errors.New("shift not found")
	ErrShiftExists   = errors.New("guard already holds this shift at the site")

	// Conflict: the guard already holds the same shift type at another site
	ErrShiftConflict = errors.New("guard already holds this shift type at another site")

	ErrGuardListRequired = errors.New("at least one guard is required")
)
