package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facegate/facegate/pkg/domain"
)

func newMockDB(t *testing.T) (*UsersRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUsersRepository(db), mock
}

func userRows(user *domain.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "phone", "role", "status",
		"profile_completed", "failed_login_attempts", "lock_until", "last_login_at", "created_at", "updated_at",
	}).AddRow(
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone,
		user.Role, user.Status, user.ProfileCompleted, user.FailedLoginAttempts,
		user.LockUntil, user.LastLoginAt, user.CreatedAt, user.UpdatedAt,
	)
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:               uuid.New(),
		Email:            "alice@example.com",
		PasswordHash:     "$argon2id$hash",
		Role:             domain.RoleClient,
		Status:           domain.StatusActive,
		ProfileCompleted: true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

func TestUsersRepositoryGetByEmail(t *testing.T) {
	repo, mock := newMockDB(t)
	user := sampleUser()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(user.Email).
		WillReturnRows(userRows(user))

	got, err := repo.GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepositoryGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUsersRepositoryCreate(t *testing.T) {
	repo, mock := newMockDB(t)
	user := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
			user.Phone, user.Role, user.Status, user.ProfileCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepositoryRegisterFailedLogin(t *testing.T) {
	repo, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("failed_login_attempts = failed_login_attempts + 1")).
		WithArgs(id, 5, (15 * time.Minute).Seconds()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RegisterFailedLogin(context.Background(), id, 5, 15*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepositoryRegisterFailedLoginUnknownUser(t *testing.T) {
	repo, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("failed_login_attempts = failed_login_attempts + 1")).
		WithArgs(id, 5, (15 * time.Minute).Seconds()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RegisterFailedLogin(context.Background(), id, 5, 15*time.Minute)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUsersRepositoryRegisterSuccessfulLogin(t *testing.T) {
	repo, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("failed_login_attempts = 0")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RegisterSuccessfulLogin(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepositoryCompleteProfile(t *testing.T) {
	repo, mock := newMockDB(t)
	id := uuid.New()
	phone := "+1 555 0100"

	mock.ExpectExec(regexp.QuoteMeta("profile_completed = TRUE")).
		WithArgs(id, "Alice", "Smith", &phone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CompleteProfile(context.Background(), id, "Alice", "Smith", &phone))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepositoryExistsByEmail(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
