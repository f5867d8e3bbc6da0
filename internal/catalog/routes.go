package catalog

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/services", h.List)
	r.Get("/services/{id}", h.Show)
	r.Get("/payment-options", h.PaymentOptions)
	r.Post("/services", h.CreateCustom)
	r.Patch("/services/{id}", h.UpdateCustom)
	r.Delete("/services/{id}", h.DeleteCustom)
}
