package posts

import (
	"context"
	"sync"
	"time"

	"github.com/rcabrera/citywatch/internal/server/models"
)

// MemoryRepository is a mutex-guarded in-process implementation. It backs
// tests and local development without Postgres.
type MemoryRepository struct {
	mu      sync.Mutex
	seq     int64
	records []*models.Post
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (r *MemoryRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *post
	cp.ID = r.seq
	cp.CreatedAt = time.Now()
	r.records = append(r.records, &cp)
	out := cp
	return &out, nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Post, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		cp := *r.records[i]
		out = append(out, &cp)
	}
	return out, nil
}
