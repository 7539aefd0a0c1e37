// Package admin implements admin-only account provisioning.
package admin

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

// Handler handles admin endpoints.
type Handler struct {
	logger      *slog.Logger
	authService *auth.AuthService
}

// NewHandler creates a new admin handler.
func NewHandler(logger *slog.Logger, authService *auth.AuthService) *Handler {
	return &Handler{logger: logger, authService: authService}
}

// CreateUserRequest provisions a new pending account.
type CreateUserRequest struct {
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// CreateUserResponse returns the new account and its one-time
// temporary password. The password is never retrievable again.
type CreateUserResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	Status            string `json:"status"`
	TemporaryPassword string `json:"temporary_password"`
}

// CreateUser provisions a pending account.
// POST /v1/admin/users
// Requires an admin session token.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	role := domain.UserRole(req.Role)
	if req.Role == "" {
		role = domain.RoleClient
	}

	created, err := h.authService.CreateUser(r.Context(), adminID, req.Email, role, req.FirstName, req.LastName, req.Phone, domain.ClientContext{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			httputil.Error(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, domain.ErrInvalidRole):
			httputil.Error(w, http.StatusBadRequest, "invalid role")
		case errors.Is(err, domain.ErrUserAlreadyExists):
			httputil.Error(w, http.StatusConflict, "user already exists")
		default:
			h.logger.Error("user creation failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "user creation failed")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, CreateUserResponse{
		ID:                created.User.ID.String(),
		Email:             created.User.Email,
		Role:              string(created.User.Role),
		Status:            string(created.User.Status),
		TemporaryPassword: created.TemporaryPassword,
	})
}
