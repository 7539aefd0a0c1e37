package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
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

	// JWT
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Face matching
	FaceThreshold  float64
	FaceDimensions int

	// SMTP (optional; temporary passwords are only logged without it)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// HTTP hardening
	RateLimit          RateLimitConfig
	MaxRequestBodySize int64
	CookieSecure       bool

	// Background maintenance
	SessionSweepInterval time.Duration
}

// RateLimitConfig holds per-surface rate limits.
type RateLimitConfig struct {
	Enabled bool

	// AuthRequestsPerMinute caps login and refresh attempts per IP.
	AuthRequestsPerMinute int

	// FaceRequestsPerMinute caps face challenge attempts per IP.
	FaceRequestsPerMinute int

	// ResetRequestsPerWindow caps forgot-password requests per IP over
	// ResetWindowMinutes.
	ResetRequestsPerWindow int
	ResetWindowMinutes     int
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
		DBName:     getEnv("DB_NAME", "facegate"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "facegate"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		// Face matching defaults
		FaceThreshold:  getEnvFloat("FACE_THRESHOLD", 0.45),
		FaceDimensions: getEnvInt("FACE_DIMENSIONS", 128),

		// SMTP (optional)
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@localhost"),

		RateLimit: RateLimitConfig{
			Enabled:                getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerMinute:  getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			FaceRequestsPerMinute:  getEnvInt("RATE_LIMIT_FACE_PER_MINUTE", 10),
			ResetRequestsPerWindow: getEnvInt("RATE_LIMIT_RESET_PER_WINDOW", 3),
			ResetWindowMinutes:     getEnvInt("RATE_LIMIT_RESET_WINDOW_MINUTES", 15),
		},
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64*1024)),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),

		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if cfg.FaceThreshold <= 0 {
		return nil, fmt.Errorf("FACE_THRESHOLD must be positive")
	}
	if cfg.FaceDimensions <= 0 {
		return nil, fmt.Errorf("FACE_DIMENSIONS must be positive")
	}

	return cfg, nil
}

// HasSMTP returns true if SMTP delivery is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != ""
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
