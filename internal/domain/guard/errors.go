package guard

import "errors"

var (
	ErrGuardNotFound     = errors.New("guard not found")
	ErrBadgeNumberExists = errors.New("badge number already registered")
	ErrGuardInactive     = errors.New("guard is inactive")
	ErrGuardHasShifts    = errors.New("guard still holds shifts")
	ErrGuardOnBoard      = errors.New("guard still holds attendance slots or present records")
)
