package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/earnings"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EarningsHandler interface {
	ListGuards(w http.ResponseWriter, r *http.Request)
	GetGuard(w http.ResponseWriter, r *http.Request)
	GetSite(w http.ResponseWriter, r *http.Request)
	ExportGuards(w http.ResponseWriter, r *http.Request)
}

type earningsHandlerImpl struct {
	earningsService earnings.EarningsService
}

func NewEarningsHandler(earningsService earnings.EarningsService) EarningsHandler {
	return &earningsHandlerImpl{earningsService: earningsService}
}

// ListGuards implements EarningsHandler
func (h *earningsHandlerImpl) ListGuards(w http.ResponseWriter, r *http.Request) {
	result, err := h.earningsService.ListGuardEarnings(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetGuard implements EarningsHandler
func (h *earningsHandlerImpl) GetGuard(w http.ResponseWriter, r *http.Request) {
	req := earnings.GuardEarningsRequest{
		GuardID: chi.URLParam(r, "id"),
		Month:   r.URL.Query().Get("month"),
	}

	result, err := h.earningsService.GetGuardEarnings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSite implements EarningsHandler
func (h *earningsHandlerImpl) GetSite(w http.ResponseWriter, r *http.Request) {
	req := earnings.SiteEarningsRequest{
		SiteID: chi.URLParam(r, "id"),
		Month:  r.URL.Query().Get("month"),
	}

	result, err := h.earningsService.GetSiteEarnings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportGuards implements EarningsHandler - streams the monthly earnings workbook
func (h *earningsHandlerImpl) ExportGuards(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")

	data, err := h.earningsService.ExportGuardEarnings(r.Context(), month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings-%s.xlsx\"", month))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write earnings export", "month", month, "error", err)
	}
}
