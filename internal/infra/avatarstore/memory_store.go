package avatarstore

import (
	"context"
	"sync"

	"github.com/coinboard/coinboard/internal/domain/account"
)

type storedObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps uploaded objects in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

// NewMemoryStore constructs an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]storedObject)}
}

// Put records the object and returns its key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.objects[key] = storedObject{data: copied, contentType: contentType}
	return key, nil
}

// Get returns a stored object, if present.
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}

var _ account.AvatarStorage = (*MemoryStore)(nil)
