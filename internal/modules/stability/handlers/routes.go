package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all stability session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stability", func(r chi.Router) {
		r.Get("/params", h.HandleGetDefaultParams)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.HandleCreateSession)
			r.Get("/", h.HandleListSessions)
			r.Post("/run", h.HandleRunAll)

			r.Get("/{id}", h.HandleGetSession)
			r.Delete("/{id}", h.HandleDeleteSession)
			r.Post("/{id}/run", h.HandleRunSession)
			r.Post("/{id}/leak", h.HandleInjectLeak)
		})
	})
}
