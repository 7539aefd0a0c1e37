package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/facegate/facegate/pkg/domain"
)

// AuditLogsRepository handles audit trail persistence. Audit rows are
// append-only; there is no update or delete path.
type AuditLogsRepository struct {
	db *sql.DB
}

// NewAuditLogsRepository creates a new audit logs repository.
func NewAuditLogsRepository(db *sql.DB) *AuditLogsRepository {
	return &AuditLogsRepository{db: db}
}

// Insert appends an audit event. Details are stored as JSONB.
func (r *AuditLogsRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	var details []byte
	if event.Details != nil {
		var err error
		details, err = json.Marshal(event.Details)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action, details, ip_address, user_agent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.UserID, event.Action, details,
		event.IPAddress, event.UserAgent, event.Status, event.CreatedAt,
	)
	return err
}
