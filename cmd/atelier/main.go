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
	"github.com/joho/godotenv"

	"github.com/atelier-crm/atelier-crm/internal/app"
	"github.com/atelier-crm/atelier-crm/internal/auth"
	"github.com/atelier-crm/atelier-crm/internal/clients"
	"github.com/atelier-crm/atelier-crm/internal/company"
	"github.com/atelier-crm/atelier-crm/internal/dashboard"
	"github.com/atelier-crm/atelier-crm/internal/invoices"
	"github.com/atelier-crm/atelier-crm/internal/notifications"
	"github.com/atelier-crm/atelier-crm/internal/observability"
	"github.com/atelier-crm/atelier-crm/internal/platform/cache"
	"github.com/atelier-crm/atelier-crm/internal/platform/db"
	"github.com/atelier-crm/atelier-crm/internal/projects"
	"github.com/atelier-crm/atelier-crm/internal/report"
	"github.com/atelier-crm/atelier-crm/internal/shared"
	"github.com/atelier-crm/atelier-crm/internal/users"
	"github.com/atelier-crm/atelier-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	clock := shared.SystemClock{}

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

	metrics := observability.NewMetrics()

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)
	authService := auth.NewService(userRepo, redisClient, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clock)
	authHandler := auth.NewHandler(logger, authService, userService)

	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	projectRepo := projects.NewRepository(pool)
	projectService := projects.NewService(projectRepo, clientService)
	projectHandler := projects.NewHandler(logger, projectService)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	notificationRepo := notifications.NewRepository(pool)
	resolver := notifications.NewStaffResolver(userService)
	notificationService := notifications.NewService(logger, notificationRepo, resolver)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(logger, invoiceRepo, projectService, notificationService, clock)

	companyRepo := company.NewRepository(pool)
	companyService := company.NewService(companyRepo)
	companyHandler := company.NewHandler(logger, companyService)

	exporter, err := report.NewExporter(cfg.GotenbergURL, http.DefaultClient, companyService)
	if err != nil {
		logger.Error("init pdf exporter", slog.Any("error", err))
		os.Exit(1)
	}
	invoiceHandler := invoices.NewHandler(logger, invoiceService, exporter, clock)

	deduper := notifications.NewDeduper(redisClient, clock)
	sweepMutex := cache.NewMutex(redisClient, "invoices:sweep:lock", 10*time.Minute)
	sweeper := notifications.NewSweeper(logger, invoiceRepo, notificationService, deduper, sweepMutex, jobClient, metrics, clock)
	notificationHandler := notifications.NewHandler(logger, notificationService, sweeper)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, clock)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       auth.Middleware{Service: authService},
		AuthHandler:          authHandler,
		ClientsHandler:       clientHandler,
		ProjectsHandler:      projectHandler,
		InvoicesHandler:      invoiceHandler,
		NotificationsHandler: notificationHandler,
		DashboardHandler:     dashboardHandler,
		CompanyHandler:       companyHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
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
