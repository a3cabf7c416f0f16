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
	"github.com/redis/go-redis/v9"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/app"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/auth"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/catalog"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/observability"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/platform/db"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/provider"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/jobs"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	authProvider := provider.NewHTTPProvider(cfg.AuthProviderURL, cfg.AuthServiceKey, cfg.AuthCallTimeout, logger)
	directory := identity.NewRepository(pool)
	tokenCache := auth.NewTokenCache(redisClient, cfg.TokenCacheTTL)
	cleanup := jobs.NewEnqueuer(asynqClient)

	authService := auth.NewService(logger, authProvider, directory, tokenCache, cleanup)

	catalogService := catalog.NewService(catalog.Default(), catalog.NewRepository(pool), logger)

	authMiddleware := auth.Middleware{
		Service:     authService,
		Logger:      logger,
		Permissions: catalogService,
	}
	authHandler := auth.NewHandler(logger, authService, authMiddleware)
	catalogHandler := catalog.NewHandler(logger, catalogService, authMiddleware)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		CatalogHandler: catalogHandler,
		Metrics:        metrics,
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
