package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the storefront facade. No business logic lives here;
// handlers delegate to the engine.
func NewRouter(cart *CartHandler, wishlist *WishlistHandler, orders *OrdersHandler, sess *SessionHandler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{product_id}", cart.UpdateQuantity)
			r.Delete("/items/{product_id}", cart.RemoveItem)
			r.Post("/coupon", cart.ApplyCoupon)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlist.GetWishlist)
			r.Delete("/", wishlist.ClearWishlist)
			r.Post("/items", wishlist.SaveItem)
			r.Get("/items/{product_id}", wishlist.CheckMembership)
			r.Delete("/items/{product_id}", wishlist.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.ListOrders)
			r.Get("/{order_number}", orders.GetOrder)
			r.Post("/{order_number}/cancel", orders.CancelOrder)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sess.GetSession)
			r.Post("/login", sess.Login)
			r.Post("/logout", sess.Logout)
		})

		r.Get("/notices", sess.DrainNotices)
	})

	return r
}
