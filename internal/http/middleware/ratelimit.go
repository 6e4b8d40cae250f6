package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/valumind/auth/internal/config"
	"github.com/valumind/auth/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint class.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates rate limiting middleware per endpoint class.
// The "stepup" class deliberately sits much lower than the others: a wrong
// OTP guess does not invalidate the stored code, so the limiter is what
// keeps the 6-digit space out of brute-force reach within its window.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			"auth":    noOp,
			"stepup":  noOp,
			"analyze": noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		"auth": RateLimit(RateLimitConfig{
			Requests: cfg.AuthRequestsPerWindow,
			Window:   time.Duration(cfg.AuthWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"stepup": RateLimit(RateLimitConfig{
			Requests: cfg.StepUpRequestsPerWindow,
			Window:   time.Duration(cfg.StepUpWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"analyze": RateLimit(RateLimitConfig{
			Requests: cfg.AnalyzeRequestsPerWindow,
			Window:   time.Duration(cfg.AnalyzeWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
	}
}
