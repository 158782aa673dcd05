package users

import (
	"context"
	"fmt"
	"sort"
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
	byID map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrConflict
		}
	}
	r.seq++
	cp := *user
	cp.ID = fmt.Sprintf("user-%d", r.seq)
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expires
	return nil
}

func (r *MemoryRepository) GetByValidResetToken(ctx context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetExpires != nil && u.ResetExpires.After(time.Now()) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpires = nil
	return nil
}

func (r *MemoryRepository) UpdateContact(ctx context.Context, email, houseNo, barangay, number string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			u.HouseNo = houseNo
			u.Barangay = barangay
			u.Number = number
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}
