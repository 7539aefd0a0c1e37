package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
	"github.com/facegate/facegate/pkg/face"
)

// FaceService confirms identity against a per-user enrolled descriptor
// and guards registration against duplicate facial identities.
type FaceService struct {
	matcher     face.Matcher
	descriptors DescriptorStore
	audit       AuditRecorder
}

// NewFaceService creates a face verification service.
func NewFaceService(matcher face.Matcher, descriptors DescriptorStore, audit AuditRecorder) *FaceService {
	return &FaceService{matcher: matcher, descriptors: descriptors, audit: audit}
}

// Matcher returns the configured matcher.
func (s *FaceService) Matcher() face.Matcher {
	return s.matcher
}

// Verify compares an incoming descriptor against the account's primary
// descriptor. A missing enrollment is an operational error
// (domain.ErrNoEnrolledDescriptor), never a mismatch. Both outcomes are
// audited with distance and threshold only, never descriptor values.
func (s *FaceService) Verify(ctx context.Context, userID uuid.UUID, descriptor []float64, client domain.ClientContext) (face.Result, error) {
	if err := s.matcher.Validate(descriptor); err != nil {
		return face.Result{}, err
	}

	stored, err := s.descriptors.GetPrimaryByUserID(ctx, userID)
	if err != nil {
		return face.Result{}, err
	}

	result, err := s.matcher.Compare(stored.Descriptor, descriptor)
	if err != nil {
		return face.Result{}, err
	}

	if result.Match {
		s.audit.Record(ctx, auditEvent(&userID, "face_verification_success", domain.AuditSuccess,
			map[string]any{"distance": result.Distance, "threshold": result.Threshold}, client))
	} else {
		s.audit.Record(ctx, auditEvent(&userID, "face_verification_failed", domain.AuditFailed,
			map[string]any{"distance": result.Distance, "threshold": result.Threshold}, client))
	}

	return result, nil
}

// FaceMatch is the outcome of the duplicate-identity scan.
type FaceMatch struct {
	Exists   bool
	UserID   uuid.UUID
	Distance float64
}

// CheckIfFaceExists scans all enrolled descriptors, primary or
// secondary, and returns the first one matching the candidate within
// the configured threshold. Descriptors belonging to userID are
// skipped: only a match against a different account is a conflict, and
// re-enrolling after a partially completed registration must not
// self-match. Scan order is unspecified but the scan is exhaustive
// until a match.
func (s *FaceService) CheckIfFaceExists(ctx context.Context, userID uuid.UUID, descriptor []float64) (FaceMatch, error) {
	if err := s.matcher.Validate(descriptor); err != nil {
		return FaceMatch{}, err
	}

	all, err := s.descriptors.ListAll(ctx)
	if err != nil {
		return FaceMatch{}, err
	}

	for _, enrolled := range all {
		if enrolled.UserID == userID {
			continue
		}
		result, err := s.matcher.Compare(enrolled.Descriptor, descriptor)
		if err != nil {
			return FaceMatch{}, err
		}
		if result.Match {
			return FaceMatch{Exists: true, UserID: enrolled.UserID, Distance: result.Distance}, nil
		}
	}

	return FaceMatch{}, nil
}

// Enroll stores a descriptor as the account's primary. Any previous
// primary is demoted in the same transaction.
func (s *FaceService) Enroll(ctx context.Context, userID uuid.UUID, descriptor []float64) error {
	if err := s.matcher.Validate(descriptor); err != nil {
		return err
	}

	return s.descriptors.CreatePrimary(ctx, &domain.FaceDescriptor{
		ID:         uuid.New(),
		UserID:     userID,
		Descriptor: descriptor,
		IsPrimary:  true,
		Version:    1,
	})
}
