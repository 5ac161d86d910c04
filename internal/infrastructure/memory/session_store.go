package memory

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps revocations in process memory. Expired token
// revocations are dropped lazily.
type SessionStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	users  map[string]time.Time
	now    func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tokens: make(map[string]time.Time),
		users:  make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *SessionStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenID] = until
	return nil
}

func (s *SessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.tokens[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.tokens, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *SessionStore) RevokeUser(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = at
	return nil
}

func (s *SessionStore) RevokedBefore(_ context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID], nil
}
