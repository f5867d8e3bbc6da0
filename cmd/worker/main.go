package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/prospeto-crm/prospeto-crm/internal/app"
	"github.com/prospeto-crm/prospeto-crm/internal/platform/db"
	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
	"github.com/prospeto-crm/prospeto-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)
	proposalsRepo := proposals.NewRepository(pool)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeProposalNotifySent, Handler: jobs.NewProposalNotifySentHandler(proposalsRepo, auditLogger, logger)},
			{Type: jobs.TaskTypeProposalExpireScan, Handler: jobs.NewProposalExpireScanHandler(proposalsRepo, auditLogger, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: jobs.NewProposalExpireScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
