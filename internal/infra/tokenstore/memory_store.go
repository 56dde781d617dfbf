package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/coinboard/coinboard/internal/domain/account"
)

// MemoryStore keeps revoked tokens in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryStore constructs an empty in-memory blacklist.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

// Add records a revoked token. A zero ttl never expires.
func (s *MemoryStore) Add(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deadline time.Time
	if ttl != 0 {
		deadline = time.Now().Add(ttl)
	}
	s.entries[token] = deadline
	s.cleanupLocked(time.Now())
	return nil
}

// Contains reports whether the token was revoked and is still tracked.
func (s *MemoryStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deadline, ok := s.entries[token]
	if !ok {
		return false, nil
	}
	if !deadline.IsZero() && deadline.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) cleanupLocked(now time.Time) {
	for token, deadline := range s.entries {
		if !deadline.IsZero() && deadline.Before(now) {
			delete(s.entries, token)
		}
	}
}

var _ account.TokenBlacklist = (*MemoryStore)(nil)
