package service_test

import (
	"context"
	"sync"

	"authgate/internal/models"
	"authgate/internal/repository"
)

// In-memory stores mirroring the repository contract, including the atomic
// claim semantics of the session table.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) List(_ context.Context, limit int, offset int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		all = append(all, user)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *memUserStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsActive = active
	s.users[id] = user
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.RefreshSession // keyed by token hash
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]models.RefreshSession)}
}

func (s *memSessionStore) Create(_ context.Context, session models.RefreshSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[string(session.TokenHash)] = session
	return nil
}

func (s *memSessionStore) Claim(_ context.Context, tokenHash []byte) (models.RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[string(tokenHash)]
	if !ok {
		return models.RefreshSession{}, repository.ErrSessionNotFound
	}
	delete(s.sessions, string(tokenHash))
	return session, nil
}

func (s *memSessionStore) DeleteByTokenHash(_ context.Context, tokenHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, string(tokenHash))
	return nil
}

func (s *memSessionStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for key, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *memSessionStore) put(session models.RefreshSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[string(session.TokenHash)] = session
}
