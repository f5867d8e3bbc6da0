package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

// DocumentSource resolves the data a proposal PDF needs.
type DocumentSource interface {
	DocumentData(ctx context.Context, id int64) (*proposals.ProposalWithDetails, quote.Summary, error)
}

// Handler manages report endpoints.
type Handler struct {
	client *Client
	source DocumentSource
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, source DocumentSource, logger *slog.Logger) *Handler {
	return &Handler{client: client, source: source, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/ping", h.ping)
	r.Get("/reports/proposals/{id}", h.proposalPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) proposalPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	detail, summary, err := h.source.DocumentData(r.Context(), id)
	if err != nil {
		if errors.Is(err, proposals.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("proposal document data", slog.Int64("id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), ProposalDocument(detail, summary))
	if err != nil {
		h.logger.Error("render proposal pdf", slog.Int64("id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=proposta-"+strconv.FormatInt(id, 10)+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
