package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trit gate routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trit", func(r chi.Router) {
		r.Post("/measure", h.HandleMeasure)
		r.Post("/cycle", h.HandleCycle)
		r.Post("/swap", h.HandleSwap)
		r.Post("/add", h.HandleAdd)
		r.Post("/hybrid", h.HandleHybrid)
		r.Get("/random", h.HandleRandom)
	})
}
