package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditStatus is the outcome flag on an audit event.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailed  AuditStatus = "failed"
)

// AuditEvent records a security-relevant action. Details never contain
// passwords, tokens, or raw descriptor values.
type AuditEvent struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Action    string
	Details   map[string]any
	IPAddress string
	UserAgent string
	Status    AuditStatus
	CreatedAt time.Time
}

// ClientContext carries request metadata attached to audit events and
// sessions.
type ClientContext struct {
	IP        string
	UserAgent string
}
