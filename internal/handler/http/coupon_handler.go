package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/coupon"
)

type CreateCouponRequest struct {
	Code         string  `json:"code" validate:"required"`
	DiscountType string  `json:"discountType" validate:"required,oneof=percentage fixed"`
	Value        float64 `json:"value" validate:"gt=0"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

type SetCouponActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// CouponResponse carries the value as a JSON number.
type CouponResponse struct {
	Code         string  `json:"code"`
	DiscountType string  `json:"discountType"`
	Value        float64 `json:"value"`
	IsActive     bool    `json:"isActive"`
}

type PriceResponse struct {
	Code            string `json:"code"`
	Amount          int64  `json:"amount"`
	DiscountedPrice int64  `json:"discountedPrice"`
}

func newCouponResponse(c coupon.Coupon) CouponResponse {
	return CouponResponse{
		Code:         c.Code,
		DiscountType: string(c.DiscountType),
		Value:        c.Value.InexactFloat64(),
		IsActive:     c.IsActive,
	}
}

type CouponHandler struct {
	service coupon.Service
}

func NewCouponHandler(service coupon.Service) *CouponHandler {
	return &CouponHandler{service: service}
}

func (h *CouponHandler) RegisterRoutes(router chi.Router) {
	router.Get("/coupons/{code}/price", h.handlePreviewPrice)
}

func (h *CouponHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/coupons", h.handleListCoupons)
	router.Post("/coupons", h.handleCreateCoupon)
	router.Patch("/coupons/{code}", h.handleSetActive)
	router.Delete("/coupons/{code}", h.handleDeleteCoupon)
}

func (h *CouponHandler) handlePreviewPrice(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid amount parameter")
		return
	}

	code := chi.URLParam(r, "code")
	price, err := h.service.DiscountedPrice(r.Context(), code, amount)
	if err != nil {
		respondWithServiceError(w, err, "Failed to apply coupon")
		return
	}

	respondWithJSON(w, http.StatusOK, PriceResponse{Code: coupon.NormalizeCode(code), Amount: amount, DiscountedPrice: price})
}

func (h *CouponHandler) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.ListCoupons(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list coupons")
		return
	}

	out := make([]CouponResponse, len(coupons))
	for i := range coupons {
		out[i] = newCouponResponse(coupons[i])
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *CouponHandler) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateCouponRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	c := coupon.Coupon{
		Code:         requestPayload.Code,
		DiscountType: coupon.DiscountType(requestPayload.DiscountType),
		Value:        decimal.NewFromFloat(requestPayload.Value),
		IsActive:     true,
	}
	if requestPayload.IsActive != nil {
		c.IsActive = *requestPayload.IsActive
	}

	created, err := h.service.AddCoupon(r.Context(), &c)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create coupon")
		return
	}

	respondWithJSON(w, http.StatusCreated, newCouponResponse(*created))
}

func (h *CouponHandler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var requestPayload SetCouponActiveRequest
	if !decodeJSON(w, r, &requestPayload) {
		return
	}

	if err := h.service.SetCouponActive(r.Context(), chi.URLParam(r, "code"), requestPayload.IsActive); err != nil {
		respondWithServiceError(w, err, "Failed to update coupon")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CouponHandler) handleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCoupon(r.Context(), chi.URLParam(r, "code")); err != nil {
		respondWithServiceError(w, err, "Failed to delete coupon")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
