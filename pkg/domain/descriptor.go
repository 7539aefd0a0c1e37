package domain

import (
	"time"

	"github.com/google/uuid"
)

// FaceDescriptor is a fixed-length numeric vector bound to one account.
// At most one descriptor per account is primary; the primary descriptor
// is the one used for verification comparisons.
type FaceDescriptor struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Descriptor []float64
	IsPrimary  bool
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
