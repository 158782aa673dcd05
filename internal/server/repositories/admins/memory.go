package admins

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/server/models"
)

// MemoryRepository is a mutex-guarded in-process implementation. It backs
// tests and local development without Postgres.
type MemoryRepository struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.Admin
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.Admin)}
}

func (r *MemoryRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == admin.Email {
			return nil, common.ErrConflict
		}
	}
	r.seq++
	cp := *admin
	cp.ID = fmt.Sprintf("admin-%d", r.seq)
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		out := *a
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Admin, 0, len(r.byID))
	for _, a := range r.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}
