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
	"github.com/valumind/auth/internal/config"
	httpserver "github.com/valumind/auth/internal/http"
	"github.com/valumind/auth/internal/notification"
	"github.com/valumind/auth/pkg/auth"
	"github.com/valumind/auth/pkg/repository"
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

	// Code delivery is not optional for this service: without SMTP the
	// step-up protocol cannot complete.
	if !cfg.HasSMTP() {
		logger.Error("SMTP_HOST and SMTP_FROM are required")
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
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
	otpsRepo := repository.NewOTPsRepository(db)

	// Initialize services
	emailService := notification.NewEmailService(notification.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})

	passwordService := auth.NewPasswordService(usersRepo)
	tokenService := auth.NewTokenService(auth.TokenConfig{
		Secret:      []byte(cfg.JWTSecret),
		Issuer:      cfg.JWTIssuer,
		StandardTTL: cfg.StandardTokenTTL,
		StepUpTTL:   cfg.StepUpTokenTTL,
	})
	otpService := auth.NewOTPService(auth.OTPConfig{
		CodeLength: cfg.OTPLength,
		TTL:        cfg.OTPTTL,
	}, otpsRepo)
	stepUpService := auth.NewStepUpService(otpService, tokenService, emailService, usersRepo)

	// Garbage-collect stale codes periodically. Redemption rejects stale
	// rows regardless, so this only keeps the table small.
	gcCtx, gcCancel := context.WithCancel(context.Background())
	defer gcCancel()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gcCtx.Done():
				return
			case <-ticker.C:
				if n, err := otpsRepo.DeleteExpired(gcCtx); err != nil {
					logger.Warn("otp garbage collection failed", "error", err)
				} else if n > 0 {
					logger.Info("collected expired otp rows", "count", n)
				}
			}
		}
	}()

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		PasswordService:    passwordService,
		TokenService:       tokenService,
		StepUpService:      stepUpService,
		RateLimitConfig:    cfg.RateLimit,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

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
		logger.Info("starting auth service", "addr", addr)
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
