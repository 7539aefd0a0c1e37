// Package me implements the authenticated profile endpoint.
package me

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/facegate/facegate/internal/http/middleware"
	"github.com/facegate/facegate/internal/httputil"
	"github.com/facegate/facegate/pkg/auth"
	"github.com/facegate/facegate/pkg/domain"
)

// Handler handles profile endpoints.
type Handler struct {
	logger *slog.Logger
	users  auth.UserStore
}

// NewHandler creates a new profile handler.
func NewHandler(logger *slog.Logger, users auth.UserStore) *Handler {
	return &Handler{logger: logger, users: users}
}

// ProfileResponse is the authenticated account view.
type ProfileResponse struct {
	domain.UserInfo
	Phone       *string `json:"phone,omitempty"`
	Status      string  `json:"status"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// GetMe returns the authenticated account.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load profile", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	resp := ProfileResponse{
		UserInfo: domain.NewUserInfo(user),
		Phone:    user.Phone,
		Status:   string(user.Status),
	}
	if user.LastLoginAt != nil {
		formatted := user.LastLoginAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.LastLoginAt = &formatted
	}

	httputil.JSON(w, http.StatusOK, resp)
}
