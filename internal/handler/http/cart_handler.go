package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/cart"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
)

type Cart interface {
	Add(product catalog.Product, size catalog.Size) error
	Remove(productID string, size catalog.Size) error
	UpdateQuantity(productID string, size catalog.Size, quantity int) error
	Clear() error
	Snapshot() cart.Snapshot
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=99"`
}

type CartHandler struct {
	cart    Cart
	catalog catalog.Service
}

func NewCartHandler(c Cart, catalogService catalog.Service) *CartHandler {
	return &CartHandler{cart: c, catalog: catalogService}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleAddItem)
	router.Put("/cart/items/{productId}/{size}", h.handleUpdateQuantity)
	router.Delete("/cart/items/{productId}/{size}", h.handleRemoveItem)
	router.Delete("/cart", h.handleClearCart)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload AddToCartRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), requestPayload.ProductID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to add item to cart")
		return
	}

	if err := h.cart.Add(*product, catalog.Size(requestPayload.Size)); err != nil {
		respondWithServiceError(w, err, "Failed to add item to cart")
		return
	}

	respondWithJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateQuantityRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	if err := h.cart.UpdateQuantity(chi.URLParam(r, "productId"), lineSize(r), requestPayload.Quantity); err != nil {
		respondWithServiceError(w, err, "Failed to update cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Remove(chi.URLParam(r, "productId"), lineSize(r)); err != nil {
		respondWithServiceError(w, err, "Failed to remove cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	if err := h.cart.Clear(); err != nil {
		respondWithServiceError(w, err, "Failed to clear cart")
		return
	}

	respondWithJSON(w, http.StatusOK, h.cart.Snapshot())
}

// lineSize accepts the size path segment in any case. An unknown size matches no line.
func lineSize(r *http.Request) catalog.Size {
	raw := chi.URLParam(r, "size")
	if size, err := catalog.ParseSize(raw); err == nil {
		return size
	}
	return catalog.Size(raw)
}
