package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

type GuardHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type guardHandlerImpl struct {
	guardService guard.GuardService
}

func NewGuardHandler(guardService guard.GuardService) GuardHandler {
	return &guardHandlerImpl{guardService: guardService}
}

// List implements GuardHandler. With ?selected=a,b it returns the active guards for a picker
// with the selected ones first.
func (h *guardHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("selected") {
		result, err := h.guardService.ListGuardsForSelection(r.Context(), getListQueryParam(r, "selected"))
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, result)
		return
	}

	filter := guard.GuardFilter{
		Search:    getStringQueryParam(r, "search"),
		Status:    getStringQueryParam(r, "status"),
		Type:      getStringQueryParam(r, "type"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 50),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	result, err := h.guardService.ListGuards(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Guards, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Get implements GuardHandler
func (h *guardHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.guardService.GetGuard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements GuardHandler
func (h *guardHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req guard.CreateGuardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.guardService.CreateGuard(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Guard created successfully", result)
}

// Update implements GuardHandler
func (h *guardHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req guard.UpdateGuardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.guardService.UpdateGuard(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Guard updated successfully", result)
}

// Delete implements GuardHandler
func (h *guardHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.guardService.DeleteGuard(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Guard deleted successfully", nil)
}
