package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	SaveFn        func(ctx context.Context, user *domain.User) error
	FindByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmailFn func(ctx context.Context, email domain.Email) (*domain.User, error)
	UpdateFn      func(ctx context.Context, user *domain.User) error

	// Data for default implementation
	Users     map[string]*domain.User
	SaveCalls   int
	FindCalls   int
	UpdateCalls int

	mu sync.Mutex
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// Save implements the UserStore interface
func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	m.SaveCalls++
	m.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Users[user.Email.String()]; exists {
		return store.ErrEmailExists
	}
	m.Users[user.Email.String()] = user
	return nil
}

// FindByID implements the UserStore interface
func (m *MockUserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	m.FindCalls++
	m.mu.Unlock()

	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// FindByEmail implements the UserStore interface
func (m *MockUserStore) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	m.mu.Lock()
	m.FindCalls++
	m.mu.Unlock()

	if m.FindByEmailFn != nil {
		return m.FindByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.Users[email.String()]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if owner, exists := m.Users[user.Email.String()]; exists && owner.ID != user.ID {
		return store.ErrEmailExists
	}
	for email, existing := range m.Users {
		if existing.ID == user.ID {
			delete(m.Users, email)
			m.Users[user.Email.String()] = user
			return nil
		}
	}
	return store.ErrUserNotFound
}
