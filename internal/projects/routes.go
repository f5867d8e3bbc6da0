package projects

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Get("/projects/{id}", h.ShowProject)
	r.Patch("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)
	r.Post("/projects/{id}/tasks", h.CreateTask)
	r.Post("/projects/{id}/tasks/reorder", h.ReorderTasks)
	r.Patch("/projects/{id}/tasks/{taskID}", h.UpdateTask)
	r.Delete("/projects/{id}/tasks/{taskID}", h.DeleteTask)
}
