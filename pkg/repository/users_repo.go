package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/facegate/facegate/pkg/domain"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, status,
	       profile_completed, failed_login_attempts, lock_until, last_login_at, created_at, updated_at`

// UsersRepository handles account persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create inserts a new account. A duplicate email surfaces as
// domain.ErrUserAlreadyExists.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, status, profile_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone,
		user.Role, user.Status, user.ProfileCompleted,
	)
	if isUniqueViolation(err) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

// GetByID retrieves an account by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves an account by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// ExistsByEmail checks if an account exists by email.
func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

// RegisterFailedLogin increments the failed-attempt counter and sets
// the lockout window when the counter reaches maxAttempts. The
// increment and the lock decision happen in a single statement so
// concurrent failures cannot skip the lock.
func (r *UsersRepository) RegisterFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, lockout time.Duration) error {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    lock_until = CASE
		        WHEN failed_login_attempts + 1 >= $2 THEN NOW() + make_interval(secs => $3)
		        ELSE lock_until
		    END,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, maxAttempts, lockout.Seconds())
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

// RegisterSuccessfulLogin resets the failed-attempt counter, clears
// any lockout, and stamps the last-login time.
func (r *UsersRepository) RegisterSuccessfulLogin(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET failed_login_attempts = 0,
		    lock_until = NULL,
		    last_login_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

// UpdatePassword replaces the stored password hash.
func (r *UsersRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

// CompleteProfile records the personal-info fields, marks the profile
// completed, and activates the account.
func (r *UsersRepository) CompleteProfile(ctx context.Context, id uuid.UUID, firstName, lastName string, phone *string) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4,
		    profile_completed = TRUE, status = 'active', updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, firstName, lastName, phone)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

func (r *UsersRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Phone,
		&user.Role, &user.Status, &user.ProfileCompleted, &user.FailedLoginAttempts,
		&user.LockUntil, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// requireRow maps a zero-row update to the given domain error.
func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
