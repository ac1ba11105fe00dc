package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartforge/cartforge/internal/middleware"
)

// MountRoutes attaches all API routes to the router. idempotency guards the
// merge endpoint against replayed requests; nil disables the guard (no
// key-value bucket available).
func MountRoutes(r chi.Router, h *Handlers, superAdminRoles []string, idempotency func(http.Handler) http.Handler) {
	r.Get("/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin(superAdminRoles))
			r.Get("/", h.listTenants)
			r.Post("/", h.createTenant)
			r.Get("/{id}", h.getTenant)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.createCart)
			r.Get("/", h.listCarts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Delete("/", h.deleteCart)
				r.Post("/claim", h.claimCart)

				merge := http.HandlerFunc(h.mergeCart)
				if idempotency != nil {
					r.With(idempotency).Post("/merge", merge)
				} else {
					r.Post("/merge", merge)
				}

				r.Post("/clear", h.clearCart)
				r.Post("/items", h.addItem)
				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Patch("/", h.setItemQuantity)
					r.Delete("/", h.removeItem)
					r.Post("/increment", h.incrementItem)
					r.Post("/decrement", h.decrementItem)
				})
			})
		})
	})
}
