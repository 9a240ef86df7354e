package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Post("/{id}/turns", h.HandleTurn)
		r.Get("/{id}/messages", h.GetMessages)
		r.Get("/{id}/knowledge", h.GetKnowledge)
		r.Delete("/{id}", h.CloseSession)
	})
}
