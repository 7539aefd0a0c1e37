// Package auth implements the login, face challenge, registration
// completion, and password endpoints.
package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/facegate/facegate/internal/http/middleware"
	"github.com/facegate/facegate/internal/httputil"
	"github.com/facegate/facegate/pkg/auth"
	"github.com/facegate/facegate/pkg/domain"
)

// Handler handles authentication endpoints.
type Handler struct {
	logger       *slog.Logger
	authService  *auth.AuthService
	sessions     *auth.SessionService
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new auth handler.
func NewHandler(logger *slog.Logger, authService *auth.AuthService, sessions *auth.SessionService, cookieConfig httputil.CookieConfig) *Handler {
	return &Handler{
		logger:       logger,
		authService:  authService,
		sessions:     sessions,
		cookieConfig: cookieConfig,
	}
}

func clientContext(r *http.Request) domain.ClientContext {
	return domain.ClientContext{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the password-factor outcome. The access
// token is an intermediate token; no refresh token exists yet.
type LoginResponse struct {
	Status      domain.LoginStatus `json:"status"`
	AccessToken string             `json:"access_token,omitempty"`
	TokenType   string             `json:"token_type"`
	ExpiresIn   int                `json:"expires_in"`
	User        domain.UserInfo    `json:"user"`
}

// VerifyFaceRequest carries the face descriptor for the challenge.
type VerifyFaceRequest struct {
	Descriptor []float64 `json:"descriptor"`
}

// CompleteRegistrationRequest finishes onboarding with profile fields
// and the descriptor to enroll.
type CompleteRegistrationRequest struct {
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      *string   `json:"phone,omitempty"`
	Descriptor []float64 `json:"descriptor"`
}

// AuthResponse represents a fully authenticated session.
type AuthResponse struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         domain.UserInfo `json:"user"`
}

// FaceMismatchResponse reports a failed face challenge with the
// rounded distance, so clients can show how far off the capture was.
type FaceMismatchResponse struct {
	Error     string  `json:"error"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// ForgotPasswordRequest carries the email to reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest carries the current and new passwords.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Login handles the password factor.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	outcome, err := h.authService.Login(r.Context(), req.Email, req.Password, clientContext(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, domain.ErrAccountLocked):
			httputil.Error(w, http.StatusLocked, "account temporarily locked due to too many failed login attempts. Please try again in 15 minutes.")
		case errors.Is(err, domain.ErrAccountNotActive):
			httputil.Error(w, http.StatusForbidden, "account is not active")
		default:
			h.logger.Error("login failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	h.writeLoginResponse(w, r, outcome)
}

// writeLoginResponse writes the intermediate token as a cookie (web) or
// in the body (mobile). Web clients never see the token in the body.
func (h *Handler) writeLoginResponse(w http.ResponseWriter, r *http.Request, outcome *domain.LoginOutcome) {
	if httputil.IsMobileClient(r) {
		httputil.JSON(w, http.StatusOK, LoginResponse{
			Status:      outcome.Status,
			AccessToken: outcome.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   outcome.ExpiresIn,
			User:        outcome.User,
		})
		return
	}

	httputil.SetAccessCookie(w, outcome.AccessToken, h.sessions.AccessTokenTTL(), h.cookieConfig)
	httputil.JSON(w, http.StatusOK, LoginResponse{
		Status:    outcome.Status,
		TokenType: "Bearer",
		ExpiresIn: outcome.ExpiresIn,
		User:      outcome.User,
	})
}

// VerifyFace handles the face challenge.
// POST /v1/auth/face/verify
// Requires a face-challenge access token.
func (h *Handler) VerifyFace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req VerifyFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, faceResult, err := h.authService.VerifyFace(r.Context(), userID, req.Descriptor, clientContext(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFaceMismatch):
			httputil.JSON(w, http.StatusUnauthorized, FaceMismatchResponse{
				Error:     "face verification failed",
				Distance:  faceResult.Distance,
				Threshold: faceResult.Threshold,
			})
		case errors.Is(err, domain.ErrMalformedDescriptor):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNoEnrolledDescriptor):
			httputil.Error(w, http.StatusConflict, "no face enrolled for this account")
		case errors.Is(err, domain.ErrProfileIncomplete):
			httputil.Error(w, http.StatusConflict, "profile must be completed before face verification")
		case errors.Is(err, domain.ErrAccountNotActive):
			httputil.Error(w, http.StatusForbidden, "account is not active")
		case errors.Is(err, domain.ErrUserNotFound):
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		default:
			h.logger.Error("face verification failed", "error", err, "user_id", userID)
			httputil.Error(w, http.StatusInternalServerError, "face verification failed")
		}
		return
	}

	h.writeAuthResponse(w, r, result, http.StatusOK)
}

// CompleteRegistration finishes onboarding for a pending account.
// POST /v1/auth/register/complete
// Requires a profile-completion access token.
func (h *Handler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CompleteRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.CompleteRegistration(r.Context(), userID, req.FirstName, req.LastName, req.Phone, req.Descriptor, clientContext(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingProfileFields):
			httputil.Error(w, http.StatusBadRequest, "first_name and last_name are required")
		case errors.Is(err, domain.ErrMalformedDescriptor):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrProfileAlreadyCompleted):
			httputil.Error(w, http.StatusConflict, "profile already completed")
		case errors.Is(err, domain.ErrRegistrationNotPending):
			httputil.Error(w, http.StatusConflict, "account is not pending registration")
		case errors.Is(err, domain.ErrFaceAlreadyEnrolled):
			httputil.Error(w, http.StatusConflict, "this face is already enrolled for another account")
		case errors.Is(err, domain.ErrUserNotFound):
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		default:
			h.logger.Error("registration completion failed", "error", err, "user_id", userID)
			httputil.Error(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	h.writeAuthResponse(w, r, result, http.StatusOK)
}

// ForgotPassword resets an account to a temporary password. The
// response is identical whether or not the email exists.
// POST /v1/auth/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email, clientContext(r)); err != nil {
		h.logger.Error("forgot password failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "request failed")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a temporary password has been sent",
	})
}

// ChangePassword replaces the account password.
// POST /v1/auth/password/change
// Requires a full session access token.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httputil.Error(w, http.StatusBadRequest, "current_password and new_password are required")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		httputil.Error(w, http.StatusBadRequest, "new_password and confirm_password do not match")
		return
	}

	err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, clientContext(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			httputil.Error(w, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, domain.ErrWeakPassword):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrSamePassword):
			httputil.Error(w, http.StatusBadRequest, "new password must differ from the current password")
		default:
			h.logger.Error("password change failed", "error", err, "user_id", userID)
			httputil.Error(w, http.StatusInternalServerError, "password change failed")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// writeAuthResponse writes a full session as cookies (web) or JSON body (mobile).
func (h *Handler) writeAuthResponse(w http.ResponseWriter, r *http.Request, result *domain.AuthResult, status int) {
	if httputil.IsMobileClient(r) {
		httputil.JSON(w, status, AuthResponse{
			AccessToken:  result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
			TokenType:    result.Tokens.TokenType,
			ExpiresIn:    result.Tokens.ExpiresIn,
			User:         result.User,
		})
		return
	}

	httputil.SetAuthCookies(
		w,
		result.Tokens.AccessToken,
		result.Tokens.RefreshToken,
		h.sessions.AccessTokenTTL(),
		h.sessions.RefreshTokenTTL(),
		h.cookieConfig,
	)
	httputil.JSON(w, status, AuthResponse{
		TokenType: result.Tokens.TokenType,
		ExpiresIn: result.Tokens.ExpiresIn,
		User:      result.User,
	})
}
