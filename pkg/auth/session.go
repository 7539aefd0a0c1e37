package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
)

const (
	refreshTokenLen = 32

	// Default token lifetimes
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// SessionConfig holds token issuance configuration.
type SessionConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	JWTSecret       []byte
	Issuer          string
}

// AccessTokenClaims are the claims in a signed access token. A token
// with RequiresFaceVerification set is a face-challenge token: it
// authorizes the face challenge only and is never paired with a
// refresh token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email                    string `json:"email,omitempty"`
	Role                     string `json:"role,omitempty"`
	ProfileCompleted         bool   `json:"profile_completed"`
	RequiresFaceVerification bool   `json:"requires_face_verification,omitempty"`
}

// SessionService mints access tokens and manages the refresh-token
// session lifecycle.
type SessionService struct {
	config   SessionConfig
	sessions SessionStore
	users    UserStore
}

// NewSessionService creates a session service.
func NewSessionService(config SessionConfig, sessions SessionStore, users UserStore) *SessionService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if config.RefreshTokenTTL == 0 {
		config.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	return &SessionService{config: config, sessions: sessions, users: users}
}

// AccessTokenTTL returns the access token TTL.
func (s *SessionService) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenTTL
}

// RefreshTokenTTL returns the refresh token TTL.
func (s *SessionService) RefreshTokenTTL() time.Duration {
	return s.config.RefreshTokenTTL
}

// IssueAccessToken mints a signed access token for the user. With
// requiresFace set, the token is a face-challenge token.
func (s *SessionService) IssueAccessToken(user *domain.User, requiresFace bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
		},
		Email:                    user.Email,
		Role:                     string(user.Role),
		ProfileCompleted:         user.ProfileCompleted,
		RequiresFaceVerification: requiresFace,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueSession creates a full session: an opaque refresh token bound to
// a persisted session row plus a signed access token. The session row
// is committed before any token is returned; if persistence fails the
// whole issuance fails and no token reaches the client. The refresh
// expiry is computed here, at issuance time, and stored on the session.
func (s *SessionService) IssueSession(ctx context.Context, user *domain.User, client domain.ClientContext) (*domain.TokenPair, error) {
	refreshToken, err := GenerateToken(refreshTokenLen)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: HashToken(refreshToken),
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		ExpiresAt: now.Add(s.config.RefreshTokenTTL),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	accessToken, accessExpiry, err := s.IssueAccessToken(user, false)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

// RefreshSession exchanges a valid refresh token for a new access
// token. The refresh token is reused, not rotated. Expired sessions
// surface as domain.ErrSessionNotFound (the store lazily deletes them).
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	session, err := s.sessions.GetByTokenHash(ctx, HashToken(refreshToken))
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, accessExpiry, err := s.IssueAccessToken(user, false)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

// RevokeSession deletes the session bound to a refresh token.
// Idempotent: revoking an absent token is not an error and reports
// false.
func (s *SessionService) RevokeSession(ctx context.Context, refreshToken string) (bool, error) {
	return s.sessions.DeleteByTokenHash(ctx, HashToken(refreshToken))
}

// RevokeAllForUser deletes every session for an account.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// DeleteExpired sweeps sessions past their expiry.
func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

// ValidateAccessToken validates a signed access token and returns its
// claims.
func (s *SessionService) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.JWTSecret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// GetUserIDFromToken extracts the user ID from an access token.
func (s *SessionService) GetUserIDFromToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.Join(domain.ErrInvalidToken, err)
	}
	return id, nil
}
