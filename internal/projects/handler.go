package projects

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/prospeto-crm/prospeto-crm/internal/platform/httpx"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "project not found")
	case errors.Is(err, ErrTaskNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "task not found")
	case errors.Is(err, ErrInvalidReorder):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context(), shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err, "list projects failed")
		return
	}
	if projects == nil {
		projects = []Project{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) ShowProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return
	}
	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get project failed")
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	project, err := h.service.CreateProject(r.Context(), req, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err, "create project failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return
	}
	var req UpdateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	project, err := h.service.UpdateProject(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err, "update project failed")
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return
	}
	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		h.respondError(w, err, "delete project failed")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return
	}
	var req CreateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	task, err := h.service.CreateTask(r.Context(), projectID, req)
	if err != nil {
		h.respondError(w, err, "create task failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid task id")
		return
	}
	var req UpdateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	task, err := h.service.UpdateTask(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err, "update task failed")
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid task id")
		return
	}
	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		h.respondError(w, err, "delete task failed")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return
	}
	var req ReorderTasksRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tasks, err := h.service.Reorder(r.Context(), projectID, req)
	if err != nil {
		h.respondError(w, err, "reorder tasks failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
