package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
)

// AuditStore is the persistence contract for audit events. Implemented
// by repository.AuditLogsRepository.
type AuditStore interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// Auditor writes audit events to the store. A failed write is logged
// and swallowed so the authenticated operation itself never fails on
// audit persistence.
type Auditor struct {
	store  AuditStore
	logger *slog.Logger
}

// NewAuditor creates an auditor.
func NewAuditor(store AuditStore, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{store: store, logger: logger}
}

// Record persists an audit event.
func (a *Auditor) Record(ctx context.Context, event domain.AuditEvent) {
	event.ID = uuid.New()
	event.CreatedAt = time.Now()

	if err := a.store.Insert(ctx, &event); err != nil {
		a.logger.Error("failed to write audit event",
			"action", event.Action,
			"status", event.Status,
			"error", err,
		)
	}
}

// auditEvent builds an event for the given account and outcome.
func auditEvent(userID *uuid.UUID, action string, status domain.AuditStatus, details map[string]any, client domain.ClientContext) domain.AuditEvent {
	return domain.AuditEvent{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		Status:    status,
	}
}
