package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/handler/http/response"
)

type PaymentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type paymentHandlerImpl struct {
	paymentService payment.PaymentService
}

func NewPaymentHandler(paymentService payment.PaymentService) PaymentHandler {
	return &paymentHandlerImpl{paymentService: paymentService}
}

// List implements PaymentHandler
func (h *paymentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payment.PaymentFilter{
		GuardID: getStringQueryParam(r, "guard_id"),
		Month:   getStringQueryParam(r, "month"),
		Type:    getStringQueryParam(r, "type"),
	}

	result, err := h.paymentService.ListPayments(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements PaymentHandler
func (h *paymentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentService.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements PaymentHandler
func (h *paymentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payment.CreatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.paymentService.CreatePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment recorded successfully", result)
}

// Delete implements PaymentHandler
func (h *paymentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.paymentService.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment deleted successfully", nil)
}
