package proposals

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/proposals", h.List)
	r.Get("/proposals/board", h.Board)
	r.Post("/proposals", h.Register)
	r.Get("/proposals/{id}", h.Show)
	r.Patch("/proposals/{id}", h.Update)
	r.Delete("/proposals/{id}", h.Delete)
	r.Post("/proposals/{id}/duplicate", h.Duplicate)
	r.Post("/proposals/{id}/status", h.MoveStatus)
}

// MountPublicRoutes exposes the share endpoint outside the session
// gate.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/p/{token}", h.Share)
}
