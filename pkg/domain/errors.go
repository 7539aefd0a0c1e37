package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked due to too many failed login attempts")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// Face verification errors
var (
	ErrMalformedDescriptor  = errors.New("malformed face descriptor")
	ErrNoEnrolledDescriptor = errors.New("no enrolled face descriptor")
	ErrFaceMismatch         = errors.New("face verification failed")
	ErrFaceAlreadyEnrolled  = errors.New("facial identity already registered to another account")
)

// Registration and profile errors
var (
	ErrProfileAlreadyCompleted = errors.New("profile already completed")
	ErrProfileIncomplete       = errors.New("profile not completed")
	ErrRegistrationNotPending  = errors.New("account status does not allow registration completion")
	ErrMissingProfileFields    = errors.New("first name and last name are required")
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password does not meet requirements")
	ErrSamePassword = errors.New("new password must differ from the current password")
	ErrInvalidRole  = errors.New("invalid role")
)

// Store errors
var (
	ErrDuplicateRefreshToken = errors.New("refresh token already in use")
)
