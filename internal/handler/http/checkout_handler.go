package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/checkout"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
)

type CheckoutFlow interface {
	State() checkout.State
	Open(ctx context.Context) checkout.State
	Close() checkout.State
	ProceedToShipping() error
	SubmitShipping(details checkout.ShippingDetails) error
	Back() error
	SelectPaymentMethod(method checkout.PaymentMethod) error
	SetCardDetails(card checkout.CardDetails) (checkout.CardDetails, error)
	PlaceOrder(ctx context.Context) (*order.Order, error)
}

type PaymentRequest struct {
	Method string                `json:"method" validate:"required"`
	Card   *checkout.CardDetails `json:"card,omitempty" validate:"-"`
}

type PlaceOrderResponse struct {
	Order *order.Order   `json:"order"`
	State checkout.State `json:"state"`
}

type CheckoutHandler struct {
	flow CheckoutFlow
}

func NewCheckoutHandler(flow CheckoutFlow) *CheckoutHandler {
	return &CheckoutHandler{flow: flow}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Route("/checkout", func(r chi.Router) {
		r.Get("/", h.handleGetState)
		r.Post("/open", h.handleOpen)
		r.Post("/close", h.handleClose)
		r.Post("/shipping/start", h.handleStartShipping)
		r.Put("/shipping", h.handleSubmitShipping)
		r.Post("/back", h.handleBack)
		r.Put("/payment", h.handlePayment)
		r.Post("/place-order", h.handlePlaceOrder)
	})
}

func (h *CheckoutHandler) handleGetState(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, h.flow.State())
}

func (h *CheckoutHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.flow.Open(r.Context()))
}

func (h *CheckoutHandler) handleClose(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, h.flow.Close())
}

func (h *CheckoutHandler) handleStartShipping(w http.ResponseWriter, _ *http.Request) {
	h.respondWithStep(w, h.flow.ProceedToShipping(), "Failed to start shipping step")
}

func (h *CheckoutHandler) handleSubmitShipping(w http.ResponseWriter, r *http.Request) {
	var details checkout.ShippingDetails
	if !decodeJSON(w, r, &details) {
		return
	}

	h.respondWithStep(w, h.flow.SubmitShipping(details), "Failed to save shipping details")
}

func (h *CheckoutHandler) handleBack(w http.ResponseWriter, _ *http.Request) {
	h.respondWithStep(w, h.flow.Back(), "Failed to go back")
}

func (h *CheckoutHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var requestPayload PaymentRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	if err := h.flow.SelectPaymentMethod(checkout.PaymentMethod(requestPayload.Method)); err != nil {
		respondWithServiceError(w, err, "Failed to select payment method")
		return
	}

	if requestPayload.Card != nil {
		if _, err := h.flow.SetCardDetails(*requestPayload.Card); err != nil {
			respondWithServiceError(w, err, "Failed to save card details")
			return
		}
	}

	respondWithJSON(w, http.StatusOK, h.flow.State())
}

func (h *CheckoutHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	placed, err := h.flow.PlaceOrder(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to place order")
		return
	}

	respondWithJSON(w, http.StatusCreated, PlaceOrderResponse{Order: placed, State: h.flow.State()})
}

func (h *CheckoutHandler) respondWithStep(w http.ResponseWriter, err error, fallback string) {
	if err != nil {
		respondWithServiceError(w, err, fallback)
		return
	}
	respondWithJSON(w, http.StatusOK, h.flow.State())
}
