package counters

import (
	"context"
	"sync"
)

// MemoryRepository is an in-process sequence store guarded by a mutex.
// It backs tests and local development without Postgres.
type MemoryRepository struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{seqs: make(map[string]int64)}
}

func (r *MemoryRepository) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[key]++
	return r.seqs[key], nil
}

func (r *MemoryRepository) EnsureInitialized(ctx context.Context, key string, start int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seqs[key]; !ok {
		r.seqs[key] = start
	}
	return nil
}

// Current returns the last issued value for key. Test helper.
func (r *MemoryRepository) Current(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seqs[key]
}
