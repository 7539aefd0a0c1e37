// Package http wires the HTTP surface: routes, middleware groups, and
// per-surface rate limits.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/http/features/admin"
	authfeature "github.com/facegate/facegate/internal/http/features/auth"
	"github.com/facegate/facegate/internal/http/features/me"
	"github.com/facegate/facegate/internal/http/features/session"
	"github.com/facegate/facegate/internal/http/middleware"
	"github.com/facegate/facegate/internal/httputil"
	"github.com/facegate/facegate/pkg/auth"
	"github.com/facegate/facegate/pkg/domain"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.AuthService
	SessionService     *auth.SessionService
	UserStore          auth.UserStore
	RateLimitConfig    config.RateLimitConfig
	MaxRequestBodySize int64
	CookieSecure       bool
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.CookieSecure

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	authHandler := authfeature.NewHandler(cfg.Logger, cfg.AuthService, cfg.SessionService, cookieConfig)
	sessionHandler := session.NewHandler(cfg.AuthService, cfg.SessionService, cookieConfig)
	meHandler := me.NewHandler(cfg.Logger, cfg.UserStore)
	adminHandler := admin.NewHandler(cfg.Logger, cfg.AuthService)

	// Password factor and reset (unauthenticated)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/login", authHandler.Login)
		r.Post("/v1/auth/refresh", sessionHandler.Refresh)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["reset"])
		r.Post("/v1/auth/forgot-password", authHandler.ForgotPassword)
	})
	r.Post("/v1/auth/logout", sessionHandler.Logout)

	// Second-factor and onboarding routes: any valid access token,
	// including face-challenge and profile-completion tokens.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))
		r.Use(rateLimiters["face"])
		r.Post("/v1/auth/face/verify", authHandler.VerifyFace)
		r.Post("/v1/auth/register/complete", authHandler.CompleteRegistration)
	})

	// Fully authenticated routes: face-challenge tokens are rejected.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))
		r.Use(middleware.RequireFaceVerified())
		r.Get("/v1/me", meHandler.GetMe)
		r.Post("/v1/auth/password/change", authHandler.ChangePassword)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))
		r.Use(middleware.RequireFaceVerified())
		r.Use(middleware.RequireRole(domain.RoleAdmin))
		r.Post("/v1/admin/users", adminHandler.CreateUser)
	})

	return r
}
