package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all diagnostics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/diagnostics", func(r chi.Router) {
		r.Get("/fairness", h.HandleFairness)
		r.Post("/register", h.HandleRegister)
	})
}
