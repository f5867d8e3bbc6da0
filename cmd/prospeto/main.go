package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/prospeto-crm/prospeto-crm/internal/app"
	"github.com/prospeto-crm/prospeto-crm/internal/auth"
	"github.com/prospeto-crm/prospeto-crm/internal/catalog"
	"github.com/prospeto-crm/prospeto-crm/internal/clients"
	"github.com/prospeto-crm/prospeto-crm/internal/platform/cache"
	"github.com/prospeto-crm/prospeto-crm/internal/platform/db"
	"github.com/prospeto-crm/prospeto-crm/internal/projects"
	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
	"github.com/prospeto-crm/prospeto-crm/jobs"
	"github.com/prospeto-crm/prospeto-crm/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "prospeto_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	proposalsRepo := proposals.NewRepository(pool)
	proposalsService := proposals.NewService(proposalsRepo, catalogService, clientsService, auditLogger, jobsClient, redisClient, logger)
	proposalsHandler := proposals.NewHandler(logger, proposalsService)

	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo)
	projectsHandler := projects.NewHandler(logger, projectsService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, proposalsService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	if err := proposalsService.ReloadBoard(ctx); err != nil {
		logger.Warn("initial board load", slog.Any("error", err))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		ClientsHandler:   clientsHandler,
		ProposalsHandler: proposalsHandler,
		ProjectsHandler:  projectsHandler,
		ReportHandler:    reportHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
