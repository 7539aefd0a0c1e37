package auth

import (
	"context"
	"errors"
	"time"

	"github.com/facegate/facegate/pkg/domain"
)

// Lockout policy: five failed attempts lock the account for fifteen
// minutes. The lock self-heals when the window passes.
const (
	MaxFailedLoginAttempts = 5
	LockoutDuration        = 15 * time.Minute
)

// CredentialService validates passwords against stored hashes and
// applies the lockout policy.
type CredentialService struct {
	users UserStore
	audit AuditRecorder

	// decoyHash is verified against when the account does not exist, so
	// the failure path costs the same as a real password check and does
	// not reveal account existence through timing.
	decoyHash string
}

// NewCredentialService creates a credential service.
func NewCredentialService(users UserStore, audit AuditRecorder) (*CredentialService, error) {
	decoy, err := GenerateToken(16)
	if err != nil {
		return nil, err
	}
	decoyHash, err := HashPassword(decoy)
	if err != nil {
		return nil, err
	}
	return &CredentialService{users: users, audit: audit, decoyHash: decoyHash}, nil
}

// Check verifies an email/password pair. Outcomes:
//
//   - domain.ErrInvalidCredentials: unknown account or wrong password
//     (indistinguishable to the caller; audit detail differs)
//   - domain.ErrAccountLocked: inside a lockout window, regardless of
//     password correctness
//   - domain.ErrAccountNotActive: status is neither active nor pending
//
// On success the failed-attempt counter is reset and the last-login
// time stamped. Every outcome is audited.
func (s *CredentialService) Check(ctx context.Context, email, password string, client domain.ClientContext) (*domain.User, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			VerifyPassword(password, s.decoyHash)
			s.audit.Record(ctx, auditEvent(nil, "login_failed", domain.AuditFailed,
				map[string]any{"email": email, "reason": "user not found"}, client))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked() {
		s.audit.Record(ctx, auditEvent(&user.ID, "login_failed", domain.AuditFailed,
			map[string]any{"reason": "account locked"}, client))
		return nil, domain.ErrAccountLocked
	}

	if !user.CanAuthenticate() {
		s.audit.Record(ctx, auditEvent(&user.ID, "login_failed", domain.AuditFailed,
			map[string]any{"reason": "account not active", "status": string(user.Status)}, client))
		return nil, domain.ErrAccountNotActive
	}

	if !VerifyPassword(password, user.PasswordHash) {
		if err := s.users.RegisterFailedLogin(ctx, user.ID, MaxFailedLoginAttempts, LockoutDuration); err != nil {
			return nil, err
		}
		s.audit.Record(ctx, auditEvent(&user.ID, "login_failed", domain.AuditFailed,
			map[string]any{"reason": "invalid password"}, client))
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.users.RegisterSuccessfulLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}
