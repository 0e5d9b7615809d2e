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

	"github.com/upteky/upteky-central/internal/app"
	"github.com/upteky/upteky-central/internal/attendance"
	"github.com/upteky/upteky-central/internal/auth"
	"github.com/upteky/upteky-central/internal/authz"
	"github.com/upteky/upteky-central/internal/platform/cache"
	"github.com/upteky/upteky-central/internal/platform/db"
	"github.com/upteky/upteky-central/internal/projects"
	"github.com/upteky/upteky-central/internal/shared"
	"github.com/upteky/upteky-central/internal/tasks"
	"github.com/upteky/upteky-central/internal/teams"
	"github.com/upteky/upteky-central/internal/tickets"
	"github.com/upteky/upteky-central/internal/timesheets"
	"github.com/upteky/upteky-central/internal/users"
	"github.com/upteky/upteky-central/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "upteky_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	registry := authz.NewRegistry()
	matrixStore := authz.NewStore(authz.NewStoreRepository(dbpool), registry, redisClient, cfg.PermissionCacheTTL)

	teamRepo := teams.NewRepository(dbpool)
	teamService := teams.NewService(teamRepo)

	gate := authz.NewGate(registry, matrixStore, teamService)
	authzMiddleware := authz.Middleware{Gate: gate, Logger: logger}

	userService := users.NewService(users.NewRepository(dbpool))
	userHandler := users.NewHandler(logger, userService, authzMiddleware)

	verifier := auth.NewTokenVerifier(cfg.IdPSecret)
	authService := auth.NewService(verifier, userService)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	permissionsHandler := authz.NewHandler(logger, matrixStore, authzMiddleware)

	attendanceService := attendance.NewService(attendance.NewRepository(dbpool), gate, teamService, approvalRecorder, logger)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, authzMiddleware)

	timesheetService := timesheets.NewService(timesheets.NewRepository(dbpool), teamService)
	timesheetHandler := timesheets.NewHandler(logger, timesheetService, authzMiddleware)

	ticketService := tickets.NewService(tickets.NewRepository(dbpool), userService, logger)
	ticketHandler := tickets.NewHandler(logger, ticketService, authzMiddleware, idempotencyStore)

	taskService := tasks.NewService(tasks.NewRepository(dbpool))
	taskHandler := tasks.NewHandler(logger, taskService, authzMiddleware)

	teamHandler := teams.NewHandler(logger, teamService, authzMiddleware)

	projectService := projects.NewService(projects.NewRepository(dbpool))
	projectHandler := projects.NewHandler(logger, projectService, authzMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		AttendanceHandler:  attendanceHandler,
		TimesheetHandler:   timesheetHandler,
		TicketHandler:      ticketHandler,
		TaskHandler:        taskHandler,
		TeamHandler:        teamHandler,
		ProjectHandler:     projectHandler,
		UserHandler:        userHandler,
		JobHandler:         jobHandler,
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
