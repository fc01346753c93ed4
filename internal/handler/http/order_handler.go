package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/identity"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderResponse struct {
	order.Order
	DisplayDate string `json:"displayDate"`
}

func newOrderResponse(o order.Order) OrderResponse {
	return OrderResponse{Order: o, DisplayDate: o.DisplayDate()}
}

func newOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = newOrderResponse(orders[i])
	}
	return out
}

type OrderHandler struct {
	service order.Service
	users   identity.Provider
}

func NewOrderHandler(service order.Service, users identity.Provider) *OrderHandler {
	return &OrderHandler{service: service, users: users}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders/{id}", h.handleTrackOrder)
	router.Get("/me/orders", h.handleMyOrders)
}

func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)
	router.Get("/stats", h.handleStats)
}

func (h *OrderHandler) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(*found))
}

func (h *OrderHandler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := h.users.CurrentUser(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Sign in to see your orders")
		return
	}

	orders, err := h.service.ListOrdersByEmail(r.Context(), u.Email)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponses(orders))
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponses(orders))
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateStatusRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	status, err := order.ParseStatus(requestPayload.Status)
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Details: []string{err.Error()}})
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.UpdateOrderStatus(r.Context(), id, status); err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	updated, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(*updated))
}

func (h *OrderHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to compute stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
