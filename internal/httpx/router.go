package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/watchworks/storefront/internal/httpx/middlewares"
	"github.com/watchworks/storefront/internal/identity"
)

// NewRouter assembles the full storefront route table. Each endpoint is
// defined exactly once.
func NewRouter(handler *Handler, resolver identity.Resolver, policy identity.Policy) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.CORS)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public catalog and the AI helper.
	r.Get("/api/watches", handler.ListWatches)
	r.Get("/api/watches/{id}", handler.GetWatch)
	r.Post("/api/ai/chat", handler.Chat)

	// Authenticated customer routes.
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireUser(resolver))

		r.Get("/api/cart", handler.GetCart)
		r.Post("/api/cart", handler.AddCartItem)
		r.Put("/api/cart/increase/{product_id}", handler.IncreaseCartItem)
		r.Put("/api/cart/decrease/{product_id}", handler.DecreaseCartItem)
		r.Delete("/api/cart/{product_id}", handler.RemoveCartItem)
		r.Delete("/api/cart", handler.ClearCart)

		r.Get("/api/cards", handler.ListCards)
		r.Post("/api/cards", handler.AddCard)
		r.Delete("/api/cards/{id}", handler.DeleteCard)

		r.Post("/api/checkout", handler.Checkout)
		r.Get("/api/orders", handler.ListOrders)
	})

	// Administrative routes.
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireUser(resolver))
		r.Use(middlewares.RequireAdmin(policy))

		r.Get("/api/admin/watches", handler.AdminListWatches)
		r.Post("/api/admin/watches", handler.AdminCreateWatch)
		r.Put("/api/admin/watches/{id}", handler.AdminUpdateWatch)
		r.Patch("/api/admin/watches/{id}/discontinue", handler.AdminDiscontinueWatch)
		r.Delete("/api/admin/watches/{id}", handler.AdminDeleteWatch)
		r.Put("/api/admin/update-image/{id}", handler.AdminUpdateImage)
		r.Post("/api/upload-image", handler.UploadImage)
	})

	return r
}
