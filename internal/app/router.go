package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/prospeto-crm/prospeto-crm/internal/auth"
	"github.com/prospeto-crm/prospeto-crm/internal/catalog"
	"github.com/prospeto-crm/prospeto-crm/internal/clients"
	"github.com/prospeto-crm/prospeto-crm/internal/projects"
	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
	"github.com/prospeto-crm/prospeto-crm/jobs"
	"github.com/prospeto-crm/prospeto-crm/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	ClientsHandler   *clients.Handler
	ProposalsHandler *proposals.Handler
	ProjectsHandler  *projects.Handler
	ReportHandler    *report.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Prospeto defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// public share link, no auth
	params.ProposalsHandler.MountPublicRoutes(r)

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			params.CatalogHandler.MountRoutes(r)
			params.ClientsHandler.MountRoutes(r)
			params.ProposalsHandler.MountRoutes(r)
			params.ProjectsHandler.MountRoutes(r)
			if params.ReportHandler != nil {
				params.ReportHandler.MountRoutes(r)
			}
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	return r
}
