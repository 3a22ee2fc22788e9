// Package memory provides mutex-guarded in-memory implementations of the
// repository ports. They back the development mode and the end-to-end tests;
// their semantics mirror the postgres adapters, including the atomic
// reaction upsert.
package memory

import (
	"context"
	"sync"

	"github.com/lorrc/dm-backend/internal/core/domain"
	apperrors "github.com/lorrc/dm-backend/internal/core/errors"
	"github.com/lorrc/dm-backend/internal/core/ports"
)

// UserStore is an in-memory ports.UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

var _ ports.UserRepository = (*UserStore)(nil)

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return nil, apperrors.ErrUserExists
	}

	stored := *user
	s.users[user.Username] = &stored

	out := stored
	return &out, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}

	out := *user
	return &out, nil
}
