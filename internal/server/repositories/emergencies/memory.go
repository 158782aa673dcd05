package emergencies

import (
	"context"
	"sync"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/server/models"
)

// MemoryRepository is a mutex-guarded in-process implementation. It backs
// tests and local development without Postgres.
type MemoryRepository struct {
	mu      sync.Mutex
	seq     int64
	records []*models.Emergency
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (r *MemoryRepository) Create(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *emergency
	cp.ID = r.seq
	cp.CreatedAt = time.Now()
	r.records = append(r.records, &cp)
	out := cp
	return &out, nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Emergency, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		cp := *r.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) ListBySubmitter(ctx context.Context, userID string) ([]*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Emergency
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].PostedBy == userID {
			cp := *r.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListResponded(ctx context.Context) ([]*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Emergency
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Responded {
			cp := *r.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkResponded(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EmergencyID == emergencyID {
			rec.Responded = true
			out := *rec
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) MarkArchived(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EmergencyID == emergencyID {
			rec.Archived = true
			out := *rec
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return nil
}
