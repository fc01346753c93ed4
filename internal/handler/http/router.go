package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
	Coupons  *CouponHandler
	Session  *SessionHandler
}

func NewRouter(h Handlers) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h.Products.RegisterRoutes(router)
	h.Cart.RegisterRoutes(router)
	h.Checkout.RegisterRoutes(router)
	h.Orders.RegisterRoutes(router)
	h.Coupons.RegisterRoutes(router)
	h.Session.RegisterRoutes(router)

	router.Route("/admin", func(admin chi.Router) {
		h.Products.RegisterAdminRoutes(admin)
		h.Orders.RegisterAdminRoutes(admin)
		h.Coupons.RegisterAdminRoutes(admin)
	})

	return router
}
