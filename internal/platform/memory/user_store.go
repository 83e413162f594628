package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/signup/internal/domain"
	"github.com/phrazzld/signup/internal/store"
)

// UserStore implements store.UserStore on two maps, one keyed by id and
// one by normalized email. It is safe for concurrent use.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Save implements store.UserStore.Save
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := store.ValidateUser(user, "save"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email.String()]; taken {
		return store.ErrEmailExists
	}
	if _, exists := s.byID[user.ID]; exists {
		return store.NewStoreError("user", "save", "id already stored", store.ErrDuplicate)
	}

	// Copies are stored so callers cannot mutate the store through their pointer.
	s.byID[user.ID] = *user
	s.byEmail[user.Email.String()] = user.ID
	return nil
}

// FindByID implements store.UserStore.FindByID
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// FindByEmail implements store.UserStore.FindByEmail
func (s *UserStore) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email.String()]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateUser(user, "update"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}

	newEmail := user.Email.String()
	if owner, taken := s.byEmail[newEmail]; taken && owner != user.ID {
		return store.ErrEmailExists
	}

	delete(s.byEmail, current.Email.String())
	s.byEmail[newEmail] = user.ID
	s.byID[user.ID] = *user
	return nil
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
