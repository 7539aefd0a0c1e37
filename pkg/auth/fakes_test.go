package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/facegate/pkg/domain"
)

// In-memory store fakes shared by the service tests.

type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memUserStore) add(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *memUserStore) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserStore) RegisterFailedLogin(_ context.Context, id uuid.UUID, maxAttempts int, lockout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := time.Now().Add(lockout)
		u.LockUntil = &until
	}
	return nil
}

func (m *memUserStore) RegisterSuccessfulLogin(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (m *memUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memUserStore) CompleteProfile(_ context.Context, id uuid.UUID, firstName, lastName string, phone *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FirstName = &firstName
	u.LastName = &lastName
	u.Phone = phone
	u.ProfileCompleted = true
	u.Status = domain.StatusActive
	return nil
}

type memDescriptorStore struct {
	mu          sync.Mutex
	descriptors []*domain.FaceDescriptor
}

func newMemDescriptorStore() *memDescriptorStore {
	return &memDescriptorStore{}
}

func (m *memDescriptorStore) CreatePrimary(_ context.Context, descriptor *domain.FaceDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.descriptors {
		if d.UserID == descriptor.UserID {
			d.IsPrimary = false
		}
	}
	cp := *descriptor
	m.descriptors = append(m.descriptors, &cp)
	return nil
}

func (m *memDescriptorStore) GetPrimaryByUserID(_ context.Context, userID uuid.UUID) (*domain.FaceDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.descriptors {
		if d.UserID == userID && d.IsPrimary {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNoEnrolledDescriptor
}

func (m *memDescriptorStore) ListAll(_ context.Context) ([]*domain.FaceDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.FaceDescriptor, 0, len(m.descriptors))
	for _, d := range m.descriptors {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *memSessionStore) Create(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.TokenHash]; ok {
		return domain.ErrDuplicateRefreshToken
	}
	cp := *session
	m.sessions[session.TokenHash] = &cp
	return nil
}

func (m *memSessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.IsExpired() {
		delete(m.sessions, tokenHash)
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[tokenHash]; !ok {
		return false, nil
	}
	delete(m.sessions, tokenHash)
	return true, nil
}

func (m *memSessionStore) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, hash)
		}
	}
	return nil
}

func (m *memSessionStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for hash, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (m *memSessionStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (m *memAudit) Record(_ context.Context, event domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

func (m *memAudit) has(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.Action == action {
			return true
		}
	}
	return false
}

type memNotifier struct {
	mu   sync.Mutex
	sent []struct{ To, Password string }
	err  error
}

func (m *memNotifier) SendTemporaryPassword(to, temporaryPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ To, Password string }{to, temporaryPassword})
	return nil
}
