package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/prospeto-crm/prospeto-crm/internal/platform/httpx"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListServicesRequest{
		Category:   r.URL.Query().Get("category"),
		CustomOnly: r.URL.Query().Get("custom") == "true",
	}
	if userID := shared.UserIDFromContext(r.Context()); userID > 0 {
		req.OwnerID = &userID
	}

	services, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list services failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	svc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "service not found")
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *Handler) PaymentOptions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"payment_options": quote.PaymentOptions})
}

func (h *Handler) CreateCustom(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomServiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	svc, err := h.service.CreateCustom(r.Context(), req, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create custom service failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *Handler) UpdateCustom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	var req UpdateCustomServiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	svc, err := h.service.UpdateCustom(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update custom service failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusNotFound, "Not Found", "service not found")
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *Handler) DeleteCustom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	if err := h.service.DeleteCustom(r.Context(), id); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "service not found")
		return
	}
	httpx.NoContent(w)
}
