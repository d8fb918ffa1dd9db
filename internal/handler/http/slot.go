package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/slot"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

type SlotHandler interface {
	GetBoard(w http.ResponseWriter, r *http.Request)
	Generate(w http.ResponseWriter, r *http.Request)
	Regenerate(w http.ResponseWriter, r *http.Request)
	Copy(w http.ResponseWriter, r *http.Request)
	CreateTemporary(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
	MarkAttendance(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type slotHandlerImpl struct {
	slotService slot.SlotService
}

func NewSlotHandler(slotService slot.SlotService) SlotHandler {
	return &slotHandlerImpl{slotService: slotService}
}

// GetBoard implements SlotHandler
func (h *slotHandlerImpl) GetBoard(w http.ResponseWriter, r *http.Request) {
	req := slot.SiteDateRequest{
		SiteID: chi.URLParam(r, "id"),
		Date:   r.URL.Query().Get("date"),
	}

	result, err := h.slotService.GetBoard(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Generate implements SlotHandler
func (h *slotHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req slot.SiteDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SiteID = chi.URLParam(r, "id")

	result, err := h.slotService.GenerateSlotsForDate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slots generated successfully", result)
}

// Regenerate implements SlotHandler
func (h *slotHandlerImpl) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req slot.SiteDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SiteID = chi.URLParam(r, "id")

	result, err := h.slotService.RegenerateSlotsForDate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slots regenerated successfully", result)
}

// Copy implements SlotHandler
func (h *slotHandlerImpl) Copy(w http.ResponseWriter, r *http.Request) {
	var req slot.CopySlotsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SiteID = chi.URLParam(r, "id")

	result, err := h.slotService.CopySlotsFromPreviousDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slots copied successfully", result)
}

// CreateTemporary implements SlotHandler
func (h *slotHandlerImpl) CreateTemporary(w http.ResponseWriter, r *http.Request) {
	var req slot.CreateTemporarySlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SiteID = chi.URLParam(r, "id")

	result, err := h.slotService.CreateTemporarySlot(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Temporary slot created successfully", result)
}

// Assign implements SlotHandler
func (h *slotHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req slot.AssignGuardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SlotID = chi.URLParam(r, "id")

	result, err := h.slotService.AssignGuardToSlot(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Guard assigned successfully", result)
}

// Unassign implements SlotHandler
func (h *slotHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	result, err := h.slotService.UnassignGuardFromSlot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Guard unassigned successfully", result)
}

// MarkAttendance implements SlotHandler
func (h *slotHandlerImpl) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req slot.MarkSlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.SlotID = chi.URLParam(r, "id")

	result, err := h.slotService.MarkSlotAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance marked successfully", result)
}

// Delete implements SlotHandler
func (h *slotHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.slotService.DeleteSlot(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Slot deleted successfully", nil)
}
