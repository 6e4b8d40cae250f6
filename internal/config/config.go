package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration for both the auth service and the
// gateway. Each binary validates the subset it needs at startup.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Tokens
	JWTSecret        string
	JWTIssuer        string
	StandardTokenTTL time.Duration
	StepUpTokenTTL   time.Duration

	// Step-up challenge
	OTPLength int
	OTPTTL    time.Duration

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Gateway
	AuthBaseURL string
	OCRBaseURL  string

	// Limits
	MaxRequestBodySize int64
	RateLimit          RateLimitConfig
}

// RateLimitConfig holds per-endpoint-class rate limiting configuration.
type RateLimitConfig struct {
	Enabled                  bool
	AuthRequestsPerWindow    int
	AuthWindowMinutes        int
	StepUpRequestsPerWindow  int
	StepUpWindowMinutes      int
	AnalyzeRequestsPerWindow int
	AnalyzeWindowMinutes     int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "valumind"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Token defaults: long-lived base session, short-lived elevation
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "valumind-auth"),
		StandardTokenTTL: getEnvDuration("STANDARD_TOKEN_TTL", 7*24*time.Hour),
		StepUpTokenTTL:   getEnvDuration("STEPUP_TOKEN_TTL", 10*time.Minute),

		// Challenge defaults
		OTPLength: getEnvInt("OTP_LENGTH", 6),
		OTPTTL:    getEnvDuration("OTP_TTL", 10*time.Minute),

		// SMTP (required by the auth service)
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Valumind"),

		// Gateway
		AuthBaseURL: getEnv("AUTH_BASE_URL", "http://localhost:8080"),
		OCRBaseURL:  getEnv("OCR_BASE_URL", ""),

		// Limits
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		RateLimit: RateLimitConfig{
			Enabled:                  getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerWindow:    getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			AuthWindowMinutes:        getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),
			StepUpRequestsPerWindow:  getEnvInt("RATE_LIMIT_STEPUP_REQUESTS", 5),
			StepUpWindowMinutes:      getEnvInt("RATE_LIMIT_STEPUP_WINDOW_MINUTES", 1),
			AnalyzeRequestsPerWindow: getEnvInt("RATE_LIMIT_ANALYZE_REQUESTS", 30),
			AnalyzeWindowMinutes:     getEnvInt("RATE_LIMIT_ANALYZE_WINDOW_MINUTES", 1),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OTPLength < 4 || cfg.OTPLength > 10 {
		return nil, fmt.Errorf("OTP_LENGTH must be between 4 and 10")
	}

	return cfg, nil
}

// HasSMTP returns true if SMTP delivery is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
