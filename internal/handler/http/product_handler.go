package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
)

type ProductRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Price       int64    `json:"price" validate:"gt=0"`
	SalePrice   *int64   `json:"salePrice,omitempty" validate:"omitempty,gt=0"`
	Category    string   `json:"category" validate:"required"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

func (p ProductRequest) toProduct() catalog.Product {
	return catalog.Product{
		ID:          p.ID,
		Name:        p.Name,
		BasePrice:   p.Price,
		SalePrice:   p.SalePrice,
		Category:    catalog.Category(p.Category),
		Image:       p.Image,
		Description: p.Description,
		Features:    p.Features,
		Stock:       p.Stock,
	}
}

type ProductHandler struct {
	service catalog.Service
}

func NewProductHandler(service catalog.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Get("/categories", h.handleListCategories)
}

func (h *ProductHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := catalog.Filter{
		Category: catalog.Category(query.Get("category")),
		Sort:     catalog.SortOrder(query.Get("sort")),
	}

	if raw := query.Get("maxPrice"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn().Err(err).Str("max_price", raw).Msg("Failed to parse maxPrice query parameter")
			respondWithError(w, http.StatusBadRequest, "Invalid maxPrice parameter")
			return
		}
		filter.MaxPrice = maxPrice
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.Categories())
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	product := requestPayload.toProduct()
	created, err := h.service.AddProduct(r.Context(), &product)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest
	if !decodeAndValidate(w, r, &requestPayload) {
		return
	}

	product := requestPayload.toProduct()
	product.ID = chi.URLParam(r, "id")

	if err := h.service.UpdateProduct(r.Context(), &product); err != nil {
		respondWithServiceError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
