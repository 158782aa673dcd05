package objectstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/rcabrera/citywatch/internal/common"
)

// MemoryStore keeps uploads in a map. Used by tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// Err, when set, makes every Upload fail. Lets tests exercise the
	// creation-must-abort path.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, folder, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpload, s.Err)
	}

	key := storageKey(folder)
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return "memory://" + key, nil
}

// Len returns the number of stored objects. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
