// Package facegate provides face-gated two-factor authentication as an
// embeddable library: password login, a face descriptor challenge, and
// refresh-token sessions backed by PostgreSQL.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create a Facegate instance and mount its routes
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	gate, err := facegate.New(facegate.Config{
//	    DB:        db,
//	    JWTSecret: "your-secret-key-at-least-32-chars",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/auth", gate.Router())
//	http.ListenAndServe(":8080", r)
package facegate

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authfeature "github.com/facegate/facegate/internal/http/features/auth"
	"github.com/facegate/facegate/internal/http/features/me"
	"github.com/facegate/facegate/internal/http/features/session"
	"github.com/facegate/facegate/internal/http/middleware"
	"github.com/facegate/facegate/internal/httputil"
	"github.com/facegate/facegate/pkg/auth"
	"github.com/facegate/facegate/pkg/face"
	"github.com/facegate/facegate/pkg/repository"
)

// Config holds the configuration for the facegate library.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// JWTSecret is the secret key for signing JWT tokens (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the issuer claim in JWT tokens (default: "facegate").
	JWTIssuer string

	// AccessTokenTTL is the lifetime of access tokens (default: 15 minutes).
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 7 days).
	RefreshTokenTTL time.Duration

	// FaceThreshold is the maximum Euclidean distance accepted as a
	// match (default: 0.45).
	FaceThreshold float64

	// FaceDimensions is the descriptor length (default: 128).
	FaceDimensions int

	// Notifier delivers temporary passwords (optional; without it,
	// issuance is logged but nothing is sent).
	Notifier auth.Notifier

	// Logger is the structured logger (default: slog.Default()).
	Logger *slog.Logger
}

// Facegate is the main library instance.
type Facegate struct {
	config          Config
	db              *sql.DB
	usersRepo       *repository.UsersRepository
	descriptorsRepo *repository.DescriptorsRepository
	sessionsRepo    *repository.SessionsRepository
	auditLogsRepo   *repository.AuditLogsRepository
	authService     *auth.AuthService
	sessionService  *auth.SessionService
}

// New creates a new Facegate instance with the given configuration.
// Run migrations first - see migrations/ folder for SQL files.
func New(cfg Config) (*Facegate, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	usersRepo := repository.NewUsersRepository(cfg.DB)
	descriptorsRepo := repository.NewDescriptorsRepository(cfg.DB)
	sessionsRepo := repository.NewSessionsRepository(cfg.DB)
	auditLogsRepo := repository.NewAuditLogsRepository(cfg.DB)

	auditor := auth.NewAuditor(auditLogsRepo, cfg.Logger)
	credentialService, err := auth.NewCredentialService(usersRepo, auditor)
	if err != nil {
		return nil, err
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
		cfg.Logger,
		credentialService,
		faceService,
		sessionService,
		usersRepo,
		auditor,
		cfg.Notifier,
	)

	return &Facegate{
		config:          cfg,
		db:              cfg.DB,
		usersRepo:       usersRepo,
		descriptorsRepo: descriptorsRepo,
		sessionsRepo:    sessionsRepo,
		auditLogsRepo:   auditLogsRepo,
		authService:     authService,
		sessionService:  sessionService,
	}, nil
}

// Router returns a chi router with all auth routes.
// Mount this on your main router:
//
//	r := chi.NewRouter()
//	r.Mount("/auth", gate.Router())
//
// Routes:
//
//	POST /login             - Password factor
//	POST /face/verify       - Face challenge (needs challenge token)
//	POST /register/complete - Finish onboarding (needs profile token)
//	POST /refresh           - Refresh access token
//	POST /logout            - Logout (revoke session)
//	POST /forgot-password   - Reset to a temporary password
//	POST /password/change   - Change password (protected)
//	GET  /me                - Get current user (protected)
func (f *Facegate) Router() chi.Router {
	r := chi.NewRouter()

	cookieConfig := httputil.DefaultCookieConfig()
	authHandler := authfeature.NewHandler(f.config.Logger, f.authService, f.sessionService, cookieConfig)
	sessionHandler := session.NewHandler(f.authService, f.sessionService, cookieConfig)

	r.Post("/login", authHandler.Login)
	r.Post("/refresh", sessionHandler.Refresh)
	r.Post("/logout", sessionHandler.Logout)
	r.Post("/forgot-password", authHandler.ForgotPassword)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(f.sessionService))
		r.Post("/face/verify", authHandler.VerifyFace)
		r.Post("/register/complete", authHandler.CompleteRegistration)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(f.sessionService))
		r.Use(middleware.RequireFaceVerified())
		r.Post("/password/change", authHandler.ChangePassword)

		meHandler := me.NewHandler(f.config.Logger, f.usersRepo)
		r.Get("/me", meHandler.GetMe)
	})

	return r
}

// AuthService returns the auth orchestrator for advanced usage.
func (f *Facegate) AuthService() *auth.AuthService {
	return f.authService
}

// SessionService returns the session service for advanced usage.
func (f *Facegate) SessionService() *auth.SessionService {
	return f.sessionService
}

// AuthMiddleware returns middleware that validates access tokens.
// Use this to protect your own routes:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(gate.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (f *Facegate) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(f.sessionService)
}

// RequireFaceVerified returns middleware that rejects intermediate
// tokens (face-challenge and profile-completion). Stack it after
// AuthMiddleware on routes that need a fully authenticated session.
func (f *Facegate) RequireFaceVerified() func(http.Handler) http.Handler {
	return middleware.RequireFaceVerified()
}

// GetUserIDFromContext extracts the user ID from a context.
// Use after AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return middleware.GetUserID(ctx)
}

// HealthHandler returns a simple health check handler.
func (f *Facegate) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("facegate: DB is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("facegate: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("facegate: JWTSecret must be at least 32 characters")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "facegate"
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = auth.DefaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = auth.DefaultRefreshTokenTTL
	}
	if cfg.FaceThreshold == 0 {
		cfg.FaceThreshold = face.DefaultThreshold
	}
	if cfg.FaceDimensions == 0 {
		cfg.FaceDimensions = face.DefaultDimensions
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = noopNotifier{}
	}
}

type noopNotifier struct{}

func (noopNotifier) SendTemporaryPassword(to, temporaryPassword string) error {
	return nil
}
