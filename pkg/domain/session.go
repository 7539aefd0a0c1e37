package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque refresh token to an account. Only a hash of
// the refresh token is stored; the raw token is handed to the client
// once and never persisted.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired returns true if the session expiry has passed. An expired
// session is inert and must be treated as absent on lookup.
func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// TokenPair is the access and refresh token pair of a full session.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}
