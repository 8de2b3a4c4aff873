package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryUserStore is a development and test implementation. It
// enforces the same uniqueness rules as the Postgres schema.
type InMemoryUserStore struct {
	mu         sync.RWMutex
	users      map[string]User
	byExternal map[string]string
	byEmail    map[string]string
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:      make(map[string]User),
		byExternal: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *InMemoryUserStore) GetByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *InMemoryUserStore) GetByExternalID(_ context.Context, externalID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExternal[externalID]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *InMemoryUserStore) GetByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username != nil && strings.EqualFold(*u.Username, username) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *InMemoryUserStore) Create(_ context.Context, p CreateUserParams) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(p.Email))
	if _, exists := s.byExternal[p.ExternalID]; exists {
		return User{}, ErrConflict
	}
	if _, exists := s.byEmail[email]; exists {
		return User{}, ErrConflict
	}

	u := User{
		ID:         uuid.NewString(),
		ExternalID: p.ExternalID,
		Email:      email,
		CreatedAt:  time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.byExternal[u.ExternalID] = u.ID
	s.byEmail[email] = u.ID
	return u, nil
}

func (s *InMemoryUserStore) Update(_ context.Context, id string, p UpdateUserParams) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if p.Username != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Username != nil && strings.EqualFold(*other.Username, *p.Username) {
				return User{}, ErrConflict
			}
		}
		u.Username = p.Username
	}
	if p.AvatarURL.Set {
		u.AvatarURL = p.AvatarURL.Value
	}
	s.users[id] = u
	return u, nil
}
