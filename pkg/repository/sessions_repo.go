package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
)

// SessionsRepository handles refresh-token session persistence.
type SessionsRepository struct {
	db *sql.DB
}

// NewSessionsRepository creates a new sessions repository.
func NewSessionsRepository(db *sql.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// Create inserts a new session. A token-hash collision surfaces as
// domain.ErrDuplicateRefreshToken.
func (r *SessionsRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.TokenHash,
		session.IPAddress, session.UserAgent, session.ExpiresAt, session.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateRefreshToken
	}
	return err
}

// GetByTokenHash retrieves a live session by token hash. Expired
// sessions are treated as absent: the row is deleted and the lookup
// returns domain.ErrSessionNotFound.
func (r *SessionsRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, ip_address, user_agent, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`
	session := &domain.Session{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.IPAddress, &session.UserAgent, &session.ExpiresAt, &session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		if _, err := r.DeleteByTokenHash(ctx, tokenHash); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// DeleteByTokenHash removes a session by token hash. Deleting an
// absent session is not an error; the return value reports whether a
// row was removed.
func (r *SessionsRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	query := `DELETE FROM sessions WHERE token_hash = $1`
	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeleteByUserID removes all sessions for an account.
func (r *SessionsRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// DeleteExpired removes every session past its expiry and returns the
// number removed.
func (r *SessionsRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
