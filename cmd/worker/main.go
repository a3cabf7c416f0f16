package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/app"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/platform/db"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/provider"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/jobs"
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	authProvider := provider.NewHTTPProvider(cfg.AuthProviderURL, cfg.AuthServiceKey, cfg.AuthCallTimeout, logger)
	directory := identity.NewRepository(pool)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{
				Type: jobs.TaskIdentityCleanup,
				Handler: &jobs.IdentityCleanupHandler{
					Provider:  authProvider,
					Directory: directory,
					Logger:    logger,
				},
			},
		},
	})

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}
