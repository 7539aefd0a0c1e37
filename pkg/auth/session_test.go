package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facegate/facegate/pkg/domain"
)

var testJWTSecret = []byte("0123456789abcdef0123456789abcdef")

func newSessionFixture(t *testing.T) (*SessionService, *memSessionStore, *memUserStore) {
	t.Helper()
	sessions := newMemSessionStore()
	users := newMemUserStore()
	svc := NewSessionService(SessionConfig{
		JWTSecret: testJWTSecret,
		Issuer:    "facegate-test",
	}, sessions, users)
	return svc, sessions, users
}

func TestSessionDefaults(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	assert.Equal(t, DefaultAccessTokenTTL, svc.AccessTokenTTL())
	assert.Equal(t, DefaultRefreshTokenTTL, svc.RefreshTokenTTL())
}

func TestIssueAccessTokenClaims(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")

	token, expiresAt, err := svc.IssueAccessToken(user, true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultAccessTokenTTL), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, string(domain.RoleClient), claims.Role)
	assert.True(t, claims.ProfileCompleted)
	assert.True(t, claims.RequiresFaceVerification)
	assert.Equal(t, "facegate-test", claims.Issuer)
}

func TestIssueSessionPersistsBeforeReturning(t *testing.T) {
	svc, sessions, users := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")
	users.add(user)

	pair, err := svc.IssueSession(context.Background(), user, domain.ClientContext{IP: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int(DefaultAccessTokenTTL.Seconds()), pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 1, sessions.count())

	stored, err := sessions.GetByTokenHash(context.Background(), HashToken(pair.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)

	// Face-challenge flag is never set on session access tokens.
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.False(t, claims.RequiresFaceVerification)
}

func TestRefreshSessionReusesRefreshToken(t *testing.T) {
	svc, _, users := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")
	users.add(user)

	pair, err := svc.IssueSession(context.Background(), user, domain.ClientContext{})
	require.NoError(t, err)

	refreshed, err := svc.RefreshSession(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestRefreshSessionUnknownToken(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.RefreshSession(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRefreshSessionExpired(t *testing.T) {
	svc, sessions, users := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")
	users.add(user)

	pair, err := svc.IssueSession(context.Background(), user, domain.ClientContext{})
	require.NoError(t, err)

	// Force the session past its expiry.
	sessions.mu.Lock()
	for _, s := range sessions.sessions {
		s.ExpiresAt = time.Now().Add(-time.Minute)
	}
	sessions.mu.Unlock()

	_, err = svc.RefreshSession(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Zero(t, sessions.count(), "expired session is lazily deleted on lookup")
}

func TestRevokeSessionIdempotent(t *testing.T) {
	svc, _, users := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")
	users.add(user)

	pair, err := svc.IssueSession(context.Background(), user, domain.ClientContext{})
	require.NoError(t, err)

	deleted, err := svc.RevokeSession(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.RevokeSession(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRevokeAllForUser(t *testing.T) {
	svc, sessions, users := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")
	users.add(user)

	for i := 0; i < 3; i++ {
		_, err := svc.IssueSession(context.Background(), user, domain.ClientContext{})
		require.NoError(t, err)
	}
	require.Equal(t, 3, sessions.count())

	require.NoError(t, svc.RevokeAllForUser(context.Background(), user.ID))
	assert.Zero(t, sessions.count())
}

func TestValidateAccessTokenRejectsForgery(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")

	other := NewSessionService(SessionConfig{
		JWTSecret: []byte("another-secret-another-secret-ab"),
	}, newMemSessionStore(), newMemUserStore())
	forged, _, err := other.IssueAccessToken(user, false)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(forged)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestGetUserIDFromToken(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	user := newTestUser(t, "alice@example.com", "Correct#Horse1")

	token, _, err := svc.IssueAccessToken(user, false)
	require.NoError(t, err)

	id, err := svc.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}
