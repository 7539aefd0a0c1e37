package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
)

// UserStore is the account persistence contract consumed by the auth
// services. Implemented by repository.UsersRepository.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// RegisterFailedLogin increments the failed-attempt counter and, if
	// the new count reaches maxAttempts, sets the lockout window. The
	// increment and lock decision are a single atomic read-modify-write.
	RegisterFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockout time.Duration) error

	// RegisterSuccessfulLogin resets the failed-attempt counter, clears
	// any lockout, and stamps the last-login time.
	RegisterSuccessfulLogin(ctx context.Context, id uuid.UUID) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// CompleteProfile sets the personal-info fields, flips the status to
	// active and profile-completed to true.
	CompleteProfile(ctx context.Context, id uuid.UUID, firstName, lastName string, phone *string) error
}

// DescriptorStore is the face descriptor persistence contract.
// Implemented by repository.DescriptorsRepository.
type DescriptorStore interface {
	// CreatePrimary enrolls a descriptor as the account's primary,
	// demoting any existing primary in the same transaction so exactly
	// one primary exists at every point in time.
	CreatePrimary(ctx context.Context, descriptor *domain.FaceDescriptor) error

	GetPrimaryByUserID(ctx context.Context, userID uuid.UUID) (*domain.FaceDescriptor, error)

	// ListAll returns every enrolled descriptor, primary or secondary,
	// for the duplicate-identity scan.
	ListAll(ctx context.Context) ([]*domain.FaceDescriptor, error)
}

// SessionStore is the refresh-token session persistence contract.
// Implemented by repository.SessionsRepository.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error

	// GetByTokenHash treats expired sessions as absent, lazily deleting
	// them and returning domain.ErrSessionNotFound.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)

	// DeleteByTokenHash is idempotent; it reports whether a session was
	// actually removed.
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)

	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuditRecorder is the audit-event sink. Recording is a required side
// effect of every authentication outcome; implementations must not
// fail the calling operation.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

// Notifier delivers one-time temporary passwords. Delivery is
// fire-and-forget: failures are logged by the caller, never fatal.
type Notifier interface {
	SendTemporaryPassword(to, temporaryPassword string) error
}
