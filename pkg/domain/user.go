package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the role assigned to an account.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleClient UserRole = "client"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// UserStatus is the lifecycle status of an account.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusPending  UserStatus = "pending"
	StatusBlocked  UserStatus = "blocked"
)

// User represents an account. A pending account always has
// ProfileCompleted = false; it becomes active when registration is
// completed with a face enrollment.
type User struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        string
	FirstName           *string
	LastName            *string
	Phone               *string
	Role                UserRole
	Status              UserStatus
	ProfileCompleted    bool
	FailedLoginAttempts int
	LockUntil           *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLocked returns true if the account is inside a lockout window.
func (u *User) IsLocked() bool {
	if u.LockUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockUntil)
}

// CanAuthenticate returns true if the account status allows a login
// attempt. Only active and pending accounts may proceed.
func (u *User) CanAuthenticate() bool {
	return u.Status == StatusActive || u.Status == StatusPending
}

// UserInfo is the subset of account fields exposed to clients.
type UserInfo struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FirstName        *string   `json:"first_name,omitempty"`
	LastName         *string   `json:"last_name,omitempty"`
	Role             UserRole  `json:"role"`
	ProfileCompleted bool      `json:"profile_completed"`
}

// NewUserInfo builds the client-facing view of a user.
func NewUserInfo(u *User) UserInfo {
	return UserInfo{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		ProfileCompleted: u.ProfileCompleted,
	}
}
