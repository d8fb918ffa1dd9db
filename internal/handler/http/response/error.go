package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/guardline/roster-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrPermissionDenied):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, site.ErrSiteNotFound):
		NotFound(w, "Site not found")
	case errors.Is(err, guard.ErrGuardNotFound):
		NotFound(w, "Guard not found")
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, slot.ErrSlotNotFound):
		NotFound(w, "Attendance slot not found")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, payment.ErrPaymentNotFound):
		NotFound(w, "Payment record not found")

	// Uniqueness conflicts
	case errors.Is(err, site.ErrSiteNameExists):
		Conflict(w, "Site name already exists")
	case errors.Is(err, site.ErrSiteInUse):
		Conflict(w, "Site still has shifts or slots assigned")
	case errors.Is(err, guard.ErrBadgeNumberExists):
		Conflict(w, "Badge number already registered")
	case errors.Is(err, guard.ErrGuardHasShifts):
		Conflict(w, "Guard still holds shifts")
	case errors.Is(err, guard.ErrGuardOnBoard):
		Conflict(w, "Guard is still on an attendance board")
	case errors.Is(err, shift.ErrShiftExists):
		Conflict(w, "Guard already holds this shift at the site")
	case errors.Is(err, slot.ErrSlotExists):
		Conflict(w, "Attendance slot already exists")

	// Allocation conflicts carry the offending site or counts in the wrapped message
	case errors.Is(err, shift.ErrShiftConflict),
		errors.Is(err, slot.ErrSlotOccupied),
		errors.Is(err, slot.ErrGuardAssignedElsewhere),
		errors.Is(err, slot.ErrGuardAlreadyOnBoard),
		errors.Is(err, attendance.ErrGuardPresentElsewhere),
		errors.Is(err, attendance.ErrCapacityExceeded):
		Conflict(w, err.Error())

	// Rule violations
	case errors.Is(err, guard.ErrGuardInactive),
		errors.Is(err, slot.ErrSlotNotAssigned),
		errors.Is(err, slot.ErrNoPreviousSlots),
		errors.Is(err, attendance.ErrGuardNotAssigned),
		errors.Is(err, attendance.ErrInvalidStatusChange),
		errors.Is(err, attendance.ErrReplacementRequired),
		errors.Is(err, attendance.ErrReassignedSiteRequired):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
