package document

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers export, artifact, publishing and diagram routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/documents/export", h.Export)
	r.Post("/documents/publish", h.Publish)
	r.Get("/artifacts/{id}", h.GetArtifact)
	r.Post("/diagrams/render", h.RenderDiagram)
}
