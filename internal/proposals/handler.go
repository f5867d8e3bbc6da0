package proposals

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

func (h *Handler) respondError(w http.ResponseWriter, err error, op string, attrs ...slog.Attr) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "proposal not found")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		args := make([]any, 0, len(attrs)+1)
		for _, a := range attrs {
			args = append(args, a)
		}
		args = append(args, slog.Any("error", err))
		h.logger.Error(op, args...)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	proposal, err := h.service.Register(r.Context(), req, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err, "register proposal failed")
		return
	}
	httpx.JSON(w, http.StatusCreated, proposal)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := listRequestFromQuery(r)
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, err, "list proposals failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"proposals": items,
		"total":     total,
	})
}

// Board serves the kanban projection: one bucket per status, every
// status present even when empty.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	req := listRequestFromQuery(r)
	buckets, err := h.service.BoardView(r.Context(), req)
	if err != nil {
		h.respondError(w, err, "board view failed")
		return
	}

	columns := make([]map[string]any, 0, len(Statuses))
	for _, status := range Statuses {
		items := buckets[status]
		if items == nil {
			items = []ProposalWithDetails{}
		}
		columns = append(columns, map[string]any{
			"status":    status,
			"count":     len(items),
			"proposals": items,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"columns": columns})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid proposal id")
		return
	}
	proposal, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get proposal failed", slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusOK, proposal)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid proposal id")
		return
	}
	var req UpdateProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}

	proposal, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err, "update proposal failed", slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusOK, proposal)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid proposal id")
		return
	}
	if err := h.service.Delete(r.Context(), id, shared.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, err, "delete proposal failed", slog.Int64("id", id))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid proposal id")
		return
	}
	var req DuplicateProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	proposal, err := h.service.Duplicate(r.Context(), id, req, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err, "duplicate proposal failed", slog.Int64("id", id))
		return
	}
	httpx.JSON(w, http.StatusCreated, proposal)
}

func (h *Handler) MoveStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid proposal id")
		return
	}
	var req MoveStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.MoveStatus(r.Context(), id, req.Status, shared.UserIDFromContext(r.Context())); err != nil {
		h.respondError(w, err, "move proposal status failed", slog.Int64("id", id))
		return
	}
	httpx.NoContent(w)
}

// Share serves the public read-only view. No session required; the
// token is the only credential.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "proposal not found")
		return
	}
	view, err := h.service.ShareView(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "proposal not found")
			return
		}
		h.logger.Error("share view failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func listRequestFromQuery(r *http.Request) ListProposalsRequest {
	q := r.URL.Query()
	req := ListProposalsRequest{
		Search:   q.Get("search"),
		SortBy:   SortField(q.Get("sort_by")),
		SortDesc: q.Get("order") == "desc",
	}
	if v, err := strconv.ParseInt(q.Get("owner_id"), 10, 64); err == nil && v > 0 {
		req.OwnerID = &v
	}
	if v, err := strconv.ParseInt(q.Get("client_id"), 10, 64); err == nil && v > 0 {
		req.ClientID = &v
	}
	if t, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		req.CreatedFrom = &t
	}
	if t, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		to := t.Add(24*time.Hour - time.Nanosecond)
		req.CreatedTo = &to
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		req.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		req.Offset = v
	}
	return req
}
