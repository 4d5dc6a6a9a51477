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

	"github.com/lexvault/lexvault/internal/access"
	"github.com/lexvault/lexvault/internal/app"
	"github.com/lexvault/lexvault/internal/audit"
	"github.com/lexvault/lexvault/internal/auth"
	"github.com/lexvault/lexvault/internal/catalog"
	"github.com/lexvault/lexvault/internal/platform/cache"
	"github.com/lexvault/lexvault/internal/platform/db"
	"github.com/lexvault/lexvault/internal/policy"
	"github.com/lexvault/lexvault/internal/roles"
	"github.com/lexvault/lexvault/internal/shared"
	"github.com/lexvault/lexvault/internal/tenants"
	"github.com/lexvault/lexvault/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessions := shared.NewSessionManager(redisClient, cfg.SessionPrefix, cfg.SessionTTL)

	auditService := audit.NewService(audit.NewRepository(pool))
	auditHandler := audit.NewHandler(auditService)

	rolesService := roles.NewService(roles.NewRepository(pool), auditService, logger)
	if err := rolesService.Seed(ctx); err != nil {
		logger.Error("seed system roles", slog.Any("error", err))
		os.Exit(1)
	}

	tenantsService := tenants.NewService(tenants.NewRepository(pool))
	tenantsHandler := tenants.NewHandler(logger, tenantsService)

	hydrator := access.NewHydrator(rolesService, tenantsService, logger)
	accessMW := access.Middleware{Sessions: sessions, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, hydrator, sessions)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	rolesHandler := roles.NewHandler(logger, rolesService, jobsClient)
	policyHandler := policy.NewHandler(policy.NewEvaluator(logger))
	catalogHandler := catalog.NewHandler()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Access:         accessMW,
		AuthHandler:    authHandler,
		CatalogHandler: catalogHandler,
		RolesHandler:   rolesHandler,
		TenantsHandler: tenantsHandler,
		PolicyHandler:  policyHandler,
		AuditHandler:   auditHandler,
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
