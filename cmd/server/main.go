package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staffdesk/internal/apperr"
	"staffdesk/internal/auth"
	"staffdesk/internal/cache"
	"staffdesk/internal/config"
	"staffdesk/internal/database"
	"staffdesk/internal/db"
	"staffdesk/internal/handlers"
	"staffdesk/internal/health"
	h "staffdesk/internal/http"
	"staffdesk/internal/logger"
	"staffdesk/internal/middleware"
	"staffdesk/internal/models"
	"staffdesk/internal/realtime"
	"staffdesk/internal/repositories"
	"staffdesk/internal/services"
	"staffdesk/internal/storage"
	"staffdesk/migrations"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	migrateOnly := flag.Bool("migrate", false, "Run database migrations and exit")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logr := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Logger = logr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.Connect(connectCtx, cfg)
	cancel()
	if err != nil {
		logr.Fatal().Err(err).Str("host", cfg.Database.Host).Msg("failed to connect to database")
	}
	defer pool.Close()
	logr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("connected to database")

	// Migrations are embedded so the binary runs standalone.
	logr.Info().Msg("running database migrations")
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.NewMigrator(pool, migrations.FS, logr).RunMigrations(migrateCtx)
	cancel()
	if err != nil {
		logr.Fatal().Err(err).Msg("failed to run migrations")
	}
	if *migrateOnly {
		return
	}

	// Redis is optional; without it unread counts are read from postgres.
	redisCache, err := cache.New(cfg)
	if err != nil {
		logr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, unread counts will not be cached")
	} else {
		logr.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}
	defer redisCache.Close()

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		logr.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialise document storage")
	}

	hub := realtime.NewHub(logr)
	go hub.Run(ctx)

	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(pool)
	taskRepo := repositories.NewTaskRepository(pool)
	transactionRepo := repositories.NewTransactionRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)

	if err := bootstrapAdmin(ctx, cfg, accountRepo, logr); err != nil {
		logr.Fatal().Err(err).Msg("failed to create initial admin")
	}

	// Initialize services
	totpService := services.NewTOTPService(accountRepo)
	authService := services.NewAuthService(accountRepo, jwtManager, totpService)
	accountService := services.NewAccountService(accountRepo)
	taskService := services.NewTaskService(taskRepo, accountRepo)
	transactionService := services.NewTransactionService(transactionRepo)
	reportService := services.NewReportService(transactionService)
	notificationService := services.NewNotificationService(notificationRepo, redisCache)
	documentService := services.NewDocumentService(blobs)
	dispatcher := services.NewDispatcher(notificationRepo, redisCache, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, authService, dispatcher)
	userHandler := handlers.NewUserHandler(accountService, dispatcher)
	accountHandler := handlers.NewAccountHandler(accountService)
	totpHandler := handlers.NewTOTPHandler(totpService)
	taskHandler := handlers.NewTaskHandler(taskService, dispatcher)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	reportHandler := handlers.NewReportHandler(reportService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, hub)
	uploadHandler := handlers.NewUploadHandler(documentService)
	pageHandler := handlers.NewPageHandler()
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool, redisCache))

	authMiddleware := middleware.NewAuthMiddleware(authService)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		userHandler,
		accountHandler,
		totpHandler,
		taskHandler,
		transactionHandler,
		reportHandler,
		notificationHandler,
		uploadHandler,
		pageHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.RequestLogger(logr)(middleware.PanicRecovery(corsMiddleware(router)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logr.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// bootstrapAdmin creates the configured admin account on first start.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, accounts *repositories.AccountRepository, logr zerolog.Logger) error {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		return nil
	}

	_, err := accounts.GetByEmail(ctx, cfg.Seed.AdminEmail)
	if err == nil {
		return nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}
	admin := &models.Account{
		Email:             cfg.Seed.AdminEmail,
		PasswordHash:      hash,
		FullName:          "Administrator",
		Address:           "Head office",
		Gender:            models.GenderMale,
		NationalID:        "0000000000000000",
		Phone:             "0000000000",
		BankAccountNumber: "-",
		Role:              models.RoleAdmin,
		Status:            models.StatusApproved,
	}
	if err := accounts.Create(ctx, admin); err != nil {
		return err
	}
	logr.Info().Str("email", admin.Email).Msg("initial admin created")
	return nil
}
