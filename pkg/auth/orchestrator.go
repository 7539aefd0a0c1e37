package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
	"github.com/facegate/facegate/pkg/face"
)

const temporaryPasswordLength = 12

// AuthService orchestrates the two-factor login flow: password check,
// profile-completion branch, face challenge, and session issuance. It
// also owns the account lifecycle operations that hang off that flow
// (registration completion, password reset and change, admin
// provisioning).
type AuthService struct {
	logger   *slog.Logger
	creds    *CredentialService
	faces    *FaceService
	sessions *SessionService
	users    UserStore
	audit    AuditRecorder
	notifier Notifier
	policy   *PasswordPolicy
}

// NewAuthService creates the auth orchestrator.
func NewAuthService(
	logger *slog.Logger,
	creds *CredentialService,
	faces *FaceService,
	sessions *SessionService,
	users UserStore,
	audit AuditRecorder,
	notifier Notifier,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		logger:   logger,
		creds:    creds,
		faces:    faces,
		sessions: sessions,
		users:    users,
		audit:    audit,
		notifier: notifier,
		policy:   DefaultPasswordPolicy(),
	}
}

// Login runs the password factor. It never issues a refresh token: a
// successful password check yields either a profile-completion token
// (account still pending its personal info) or a face-challenge token.
// Full sessions are only minted after the face factor or registration
// completion.
func (s *AuthService) Login(ctx context.Context, email, password string, client domain.ClientContext) (*domain.LoginOutcome, error) {
	user, err := s.creds.Check(ctx, email, password, client)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(&user.ID, "login_password_success", domain.AuditSuccess,
		map[string]any{"profile_completed": user.ProfileCompleted}, client))

	status := domain.LoginNeedsFaceChallenge
	requiresFace := true
	if !user.ProfileCompleted {
		status = domain.LoginNeedsProfile
		requiresFace = false
	}

	accessToken, _, err := s.sessions.IssueAccessToken(user, requiresFace)
	if err != nil {
		return nil, err
	}

	return &domain.LoginOutcome{
		Status:      status,
		AccessToken: accessToken,
		ExpiresIn:   int(s.sessions.AccessTokenTTL().Seconds()),
		User:        domain.NewUserInfo(user),
	}, nil
}

// VerifyFace runs the face factor for an account holding a
// face-challenge token. On a match it stamps the login and issues a
// full session. On a mismatch the comparison result is still returned
// alongside domain.ErrFaceMismatch so callers can report the distance.
func (s *AuthService) VerifyFace(ctx context.Context, userID uuid.UUID, descriptor []float64, client domain.ClientContext) (*domain.AuthResult, face.Result, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, face.Result{}, err
	}

	if user.Status != domain.StatusActive {
		return nil, face.Result{}, domain.ErrAccountNotActive
	}
	if !user.ProfileCompleted {
		return nil, face.Result{}, domain.ErrProfileIncomplete
	}

	result, err := s.faces.Verify(ctx, userID, descriptor, client)
	if err != nil {
		return nil, face.Result{}, err
	}
	if !result.Match {
		return nil, result, domain.ErrFaceMismatch
	}

	if err := s.users.RegisterSuccessfulLogin(ctx, userID); err != nil {
		return nil, result, err
	}

	tokens, err := s.sessions.IssueSession(ctx, user, client)
	if err != nil {
		return nil, result, err
	}

	return &domain.AuthResult{Tokens: tokens, User: domain.NewUserInfo(user)}, result, nil
}

// CompleteRegistration finishes onboarding for a pending account:
// personal info is recorded and the face descriptor enrolled, after
// which the account becomes active and a full session is issued. The
// duplicate-identity scan runs before any write, so a conflicting face
// leaves the account untouched.
func (s *AuthService) CompleteRegistration(ctx context.Context, userID uuid.UUID, firstName, lastName string, phone *string, descriptor []float64, client domain.ClientContext) (*domain.AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ProfileCompleted {
		return nil, domain.ErrProfileAlreadyCompleted
	}
	if user.Status != domain.StatusPending {
		return nil, domain.ErrRegistrationNotPending
	}

	firstName = SanitizeName(firstName)
	lastName = SanitizeName(lastName)
	if firstName == "" || lastName == "" {
		return nil, domain.ErrMissingProfileFields
	}
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		if trimmed == "" {
			phone = nil
		} else {
			phone = &trimmed
		}
	}

	if err := s.faces.Matcher().Validate(descriptor); err != nil {
		return nil, err
	}

	match, err := s.faces.CheckIfFaceExists(ctx, userID, descriptor)
	if err != nil {
		return nil, err
	}
	if match.Exists {
		s.audit.Record(ctx, auditEvent(&userID, "registration_failed", domain.AuditFailed,
			map[string]any{"reason": "face already enrolled", "distance": match.Distance}, client))
		return nil, domain.ErrFaceAlreadyEnrolled
	}

	if err := s.faces.Enroll(ctx, userID, descriptor); err != nil {
		return nil, err
	}
	if err := s.users.CompleteProfile(ctx, userID, firstName, lastName, phone); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(&userID, "registration_completed", domain.AuditSuccess, nil, client))

	updated := *user
	updated.FirstName = &firstName
	updated.LastName = &lastName
	updated.Phone = phone
	updated.ProfileCompleted = true
	updated.Status = domain.StatusActive

	tokens, err := s.sessions.IssueSession(ctx, &updated, client)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{Tokens: tokens, User: domain.NewUserInfo(&updated)}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	return s.sessions.RefreshSession(ctx, refreshToken)
}

// Logout revokes the session bound to a refresh token. Revoking an
// unknown or already-revoked token succeeds silently.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, client domain.ClientContext) error {
	deleted, err := s.sessions.RevokeSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	if deleted {
		s.audit.Record(ctx, auditEvent(nil, "logout", domain.AuditSuccess, nil, client))
	}
	return nil
}

// ForgotPassword resets an account to a generated temporary password
// and delivers it out of band. The outcome is identical for known and
// unknown emails; only the audit trail distinguishes them. All sessions
// for the account are revoked.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, client domain.ClientContext) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		s.audit.Record(ctx, auditEvent(nil, "forgot_password_invalid_email", domain.AuditFailed,
			map[string]any{"email": email}, client))
		return nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.audit.Record(ctx, auditEvent(nil, "forgot_password_unknown_email", domain.AuditFailed,
				map[string]any{"email": email}, client))
			return nil
		}
		return err
	}

	tempPassword, err := GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return err
	}
	hash, err := HashPassword(tempPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	s.audit.Record(ctx, auditEvent(&user.ID, "password_reset_requested", domain.AuditSuccess, nil, client))

	if err := s.notifier.SendTemporaryPassword(user.Email, tempPassword); err != nil {
		s.logger.Error("failed to send temporary password", "user_id", user.ID, "error", err)
	}

	return nil
}

// ChangePassword replaces the account password after re-verifying the
// current one. The new password must satisfy the policy and differ from
// the current one. Other sessions stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string, client domain.ClientContext) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(currentPassword, user.PasswordHash) {
		s.audit.Record(ctx, auditEvent(&userID, "password_change_failed", domain.AuditFailed,
			map[string]any{"reason": "invalid current password"}, client))
		return domain.ErrInvalidCredentials
	}

	if err := s.policy.ValidatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return domain.ErrSamePassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.audit.Record(ctx, auditEvent(&userID, "password_changed", domain.AuditSuccess, nil, client))
	return nil
}

// CreatedUser is the outcome of admin provisioning. The temporary
// password is returned once and never stored in the clear.
type CreatedUser struct {
	User              *domain.User
	TemporaryPassword string
}

// CreateUser provisions a pending account with a generated temporary
// password. The new user completes registration (profile plus face
// enrollment) on first login.
func (s *AuthService) CreateUser(ctx context.Context, adminID uuid.UUID, email string, role domain.UserRole, firstName, lastName string, phone *string, client domain.ClientContext) (*CreatedUser, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	tempPassword, err := GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusPending,
	}
	if name := SanitizeName(firstName); name != "" {
		user.FirstName = &name
	}
	if name := SanitizeName(lastName); name != "" {
		user.LastName = &name
	}
	if phone != nil {
		if trimmed := strings.TrimSpace(*phone); trimmed != "" {
			user.Phone = &trimmed
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditEvent(&adminID, "user_created", domain.AuditSuccess,
		map[string]any{"created_user_id": user.ID.String(), "email": email, "role": string(role)}, client))

	if err := s.notifier.SendTemporaryPassword(email, tempPassword); err != nil {
		s.logger.Error("failed to send temporary password", "user_id", user.ID, "error", err)
	}

	return &CreatedUser{User: user, TemporaryPassword: tempPassword}, nil
}
