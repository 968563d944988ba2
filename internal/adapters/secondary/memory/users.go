// Package memory fournit des implémentations en mémoire des ports de
// persistance, avec les MÊMES garanties d'atomicité que les adapters Postgres
// (mutex par store au lieu d'instructions SQL uniques). Utilisé par les tests
// et le mode dev sans infrastructure.
package memory

import (
	"context"
	"sync"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User // key: user ID
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func (s *UserStore) Save(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// La contrainte UNIQUE joue ici, sous le même verrou que l'insertion.
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *UserStore) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	email := domain.NormalizeEmail(login)
	username := domain.NormalizeUsername(login)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}
