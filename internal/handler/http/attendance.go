package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Mark(w http.ResponseWriter, r *http.Request)
	BulkMark(w http.ResponseWriter, r *http.Request)
	Copy(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	Unmark(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// List implements AttendanceHandler
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		SiteID:    getStringQueryParam(r, "site_id"),
		GuardID:   getStringQueryParam(r, "guard_id"),
		Date:      getStringQueryParam(r, "date"),
		StartDate: getStringQueryParam(r, "start_date"),
		EndDate:   getStringQueryParam(r, "end_date"),
		ShiftType: getStringQueryParam(r, "shift_type"),
		Status:    getStringQueryParam(r, "status"),
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Mark implements AttendanceHandler
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.MarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance marked successfully", result)
}

// BulkMark implements AttendanceHandler. Per-guard failures are reported in the body, not as an error status.
func (h *attendanceHandlerImpl) BulkMark(w http.ResponseWriter, r *http.Request) {
	var req attendance.BulkMarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.BulkMarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Copy implements AttendanceHandler
func (h *attendanceHandlerImpl) Copy(w http.ResponseWriter, r *http.Request) {
	var req attendance.CopyAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.CopyAttendanceFromDate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance copied successfully", result)
}

// Reset implements AttendanceHandler
func (h *attendanceHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResetAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.attendanceService.ResetAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance reset successfully", result)
}

// Unmark implements AttendanceHandler
func (h *attendanceHandlerImpl) Unmark(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.UnmarkAttendance(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted successfully", nil)
}

// UpdateStatus implements AttendanceHandler
func (h *attendanceHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.UpdateAttendanceStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance status updated successfully", result)
}
