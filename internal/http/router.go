package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/valumind/auth/internal/config"
	"github.com/valumind/auth/internal/http/features/me"
	"github.com/valumind/auth/internal/http/features/password"
	"github.com/valumind/auth/internal/http/features/stepup"
	"github.com/valumind/auth/internal/http/middleware"
	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/pkg/auth"
)

// RouterConfig holds configuration for the auth service router.
type RouterConfig struct {
	Logger             *slog.Logger
	PasswordService    *auth.PasswordService
	TokenService       *auth.TokenService
	StepUpService      *auth.StepUpService
	RateLimitConfig    config.RateLimitConfig
	MaxRequestBodySize int64
}

// NewRouter creates the auth service HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "auth"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Login
	passwordHandler := password.NewHandler(cfg.Logger, cfg.PasswordService, cfg.TokenService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/login", passwordHandler.Login)
	})

	// Authenticated introspection
	meHandler := me.NewHandler(cfg.Logger, cfg.PasswordService)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenService))
		r.Get("/v1/auth/me", meHandler.GetMe)
		r.Get("/v1/auth/validate", meHandler.Validate)
	})

	// Step-up challenge: authenticated callers only
	stepUpHandler := stepup.NewHandler(cfg.Logger, cfg.StepUpService)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenService))
		r.Use(rateLimiters["stepup"])
		r.Post("/v1/auth/step-up/initiate", stepUpHandler.Initiate)
		r.Post("/v1/auth/step-up/verify", stepUpHandler.Verify)
	})

	return r
}
