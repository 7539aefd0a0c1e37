package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/facegate/facegate/internal/config"
	httpserver "github.com/facegate/facegate/internal/http"
	"github.com/facegate/facegate/internal/notification"
	"github.com/facegate/facegate/pkg/auth"
	"github.com/facegate/facegate/pkg/face"
	"github.com/facegate/facegate/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.DBConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	descriptorsRepo := repository.NewDescriptorsRepository(db)
	sessionsRepo := repository.NewSessionsRepository(db)
	auditLogsRepo := repository.NewAuditLogsRepository(db)

	// Initialize notifier
	var notifier auth.Notifier
	if cfg.HasSMTP() {
		notifier = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		logger.Info("email delivery enabled")
	} else {
		notifier = &notification.LogNotifier{Logger: logger}
		logger.Warn("SMTP not configured; temporary passwords will not be delivered")
	}

	// Initialize services
	auditor := auth.NewAuditor(auditLogsRepo, logger)
	credentialService, err := auth.NewCredentialService(usersRepo, auditor)
	if err != nil {
		logger.Error("failed to initialize credential service", "error", err)
		os.Exit(1)
	}
	faceService := auth.NewFaceService(
		face.NewMatcher(cfg.FaceDimensions, cfg.FaceThreshold),
		descriptorsRepo,
		auditor,
	)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
	}, sessionsRepo, usersRepo)
	authService := auth.NewAuthService(
		logger,
		credentialService,
		faceService,
		sessionService,
		usersRepo,
		auditor,
		notifier,
	)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		AuthService:        authService,
		SessionService:     sessionService,
		UserStore:          usersRepo,
		RateLimitConfig:    cfg.RateLimit,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CookieSecure:       cfg.CookieSecure,
	})

	// Background session sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				n, err := sessionService.DeleteExpired(sweepCtx)
				if err != nil {
					logger.Error("session sweep failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("swept expired sessions", "count", n)
				}
			}
		}
	}()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
