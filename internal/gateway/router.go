package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/valumind/auth/internal/config"
	"github.com/valumind/auth/internal/http/middleware"
	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/pkg/auth"
)

// RouterConfig holds configuration for the gateway router.
type RouterConfig struct {
	Logger             *slog.Logger
	TokenService       *auth.TokenService
	AuthClient         *AuthClient
	Forwarder          *Forwarder
	RateLimitConfig    config.RateLimitConfig
	MaxRequestBodySize int64
}

// NewRouter creates the gateway HTTP router. The protected analysis route
// sits behind the step-up guard; the step-up relay routes require a valid
// token of either kind.
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

	// Health check aggregating downstream reachability
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"gateway": "ok", "auth": "ok", "ocr": "ok"}
		if err := cfg.AuthClient.Health(req.Context()); err != nil {
			status["auth"] = "error"
		}
		if err := cfg.Forwarder.Health(req); err != nil {
			status["ocr"] = "error"
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Step-up relay: any valid bearer token may start the flow
	stepUpHandler := NewHandler(cfg.Logger, cfg.AuthClient)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenService))
		r.Use(rateLimiters["stepup"])
		r.Post("/v1/step-up/initiate", stepUpHandler.Initiate)
		r.Post("/v1/step-up/verify", stepUpHandler.Verify)
	})

	// Protected downstream: elevated sessions only
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStepUp(cfg.TokenService))
		r.Use(rateLimiters["analyze"])
		r.Post("/v1/ocr/analyze", cfg.Forwarder.Analyze)
	})

	return r
}
