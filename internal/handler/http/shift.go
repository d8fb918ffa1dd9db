package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

type ShiftHandler interface {
	ListBySite(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Allocate(w http.ResponseWriter, r *http.Request)
	Clear(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

// ListBySite implements ShiftHandler
func (h *shiftHandlerImpl) ListBySite(w http.ResponseWriter, r *http.Request) {
	result, err := h.shiftService.ListSiteShifts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements ShiftHandler
func (h *shiftHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateShiftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.shiftService.CreateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift created successfully", result)
}

// Delete implements ShiftHandler
func (h *shiftHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift deleted successfully", nil)
}

// Allocate implements ShiftHandler - replaces the guard set of one shift type at a site
func (h *shiftHandlerImpl) Allocate(w http.ResponseWriter, r *http.Request) {
	var req shift.AllocateGuardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SiteID = chi.URLParam(r, "id")
	req.Type = chi.URLParam(r, "type")

	result, err := h.shiftService.AllocateGuards(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Guards allocated successfully", result)
}

// Clear implements ShiftHandler
func (h *shiftHandlerImpl) Clear(w http.ResponseWriter, r *http.Request) {
	shiftType := shift.ShiftType(chi.URLParam(r, "type"))
	if !shiftType.IsValid() {
		response.BadRequest(w, "shift type must be day or night", nil)
		return
	}

	if err := h.shiftService.ClearShifts(r.Context(), chi.URLParam(r, "id"), shiftType); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shifts cleared successfully", nil)
}
