package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/facegate/facegate/pkg/domain"
)

// DescriptorsRepository handles face descriptor persistence. The
// descriptor vector is stored as a PostgreSQL real[] column; a partial
// unique index on (user_id) WHERE is_primary enforces a single primary
// per account.
type DescriptorsRepository struct {
	db *sql.DB
}

// NewDescriptorsRepository creates a new descriptors repository.
func NewDescriptorsRepository(db *sql.DB) *DescriptorsRepository {
	return &DescriptorsRepository{db: db}
}

// CreatePrimary inserts a descriptor as the account's primary. Any
// existing primary is demoted in the same transaction, so readers
// never observe zero or two primaries.
func (r *DescriptorsRepository) CreatePrimary(ctx context.Context, descriptor *domain.FaceDescriptor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	demote := `
		UPDATE face_descriptors
		SET is_primary = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_primary = TRUE
	`
	if _, err := tx.ExecContext(ctx, demote, descriptor.UserID); err != nil {
		return err
	}

	insert := `
		INSERT INTO face_descriptors (id, user_id, descriptor, is_primary, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := tx.ExecContext(ctx, insert,
		descriptor.ID, descriptor.UserID, pq.Array(descriptor.Descriptor),
		descriptor.IsPrimary, descriptor.Version,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetPrimaryByUserID retrieves the account's primary descriptor. An
// account with no enrollment surfaces as domain.ErrNoEnrolledDescriptor.
func (r *DescriptorsRepository) GetPrimaryByUserID(ctx context.Context, userID uuid.UUID) (*domain.FaceDescriptor, error) {
	query := `
		SELECT id, user_id, descriptor, is_primary, version, created_at, updated_at
		FROM face_descriptors
		WHERE user_id = $1 AND is_primary = TRUE
	`
	descriptor := &domain.FaceDescriptor{}
	var vector pq.Float64Array
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&descriptor.ID, &descriptor.UserID, &vector, &descriptor.IsPrimary,
		&descriptor.Version, &descriptor.CreatedAt, &descriptor.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoEnrolledDescriptor
	}
	if err != nil {
		return nil, err
	}
	descriptor.Descriptor = []float64(vector)
	return descriptor, nil
}

// ListAll retrieves every enrolled descriptor for the
// duplicate-identity scan at registration time.
func (r *DescriptorsRepository) ListAll(ctx context.Context) ([]*domain.FaceDescriptor, error) {
	query := `
		SELECT id, user_id, descriptor, is_primary, version, created_at, updated_at
		FROM face_descriptors
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var descriptors []*domain.FaceDescriptor
	for rows.Next() {
		descriptor := &domain.FaceDescriptor{}
		var vector pq.Float64Array
		err := rows.Scan(
			&descriptor.ID, &descriptor.UserID, &vector, &descriptor.IsPrimary,
			&descriptor.Version, &descriptor.CreatedAt, &descriptor.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		descriptor.Descriptor = []float64(vector)
		descriptors = append(descriptors, descriptor)
	}
	return descriptors, rows.Err()
}
