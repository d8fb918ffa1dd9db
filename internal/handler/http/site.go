package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

type SiteHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type siteHandlerImpl struct {
	siteService site.SiteService
}

func NewSiteHandler(siteService site.SiteService) SiteHandler {
	return &siteHandlerImpl{siteService: siteService}
}

// List implements SiteHandler
func (h *siteHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := site.SiteFilter{
		Name:      getStringQueryParam(r, "name"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 50),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	result, err := h.siteService.ListSites(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Sites, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Get implements SiteHandler
func (h *siteHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.siteService.GetSite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements SiteHandler
func (h *siteHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req site.CreateSiteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.siteService.CreateSite(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Site created successfully", result)
}

// Update implements SiteHandler
func (h *siteHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req site.UpdateSiteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.siteService.UpdateSite(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site updated successfully", result)
}

// Delete implements SiteHandler
func (h *siteHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.siteService.DeleteSite(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Site deleted successfully", nil)
}
