package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/dbx"
	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/models"
	adminsrepo "github.com/rcabrera/citywatch/internal/server/repositories/admins"
	countersrepo "github.com/rcabrera/citywatch/internal/server/repositories/counters"
	emergenciesrepo "github.com/rcabrera/citywatch/internal/server/repositories/emergencies"
	postsrepo "github.com/rcabrera/citywatch/internal/server/repositories/posts"
	reportsrepo "github.com/rcabrera/citywatch/internal/server/repositories/reports"
	usersrepo "github.com/rcabrera/citywatch/internal/server/repositories/users"
)

// --- shared test fixtures: in-memory repositories behind a fake manager ---

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		OutboundTimeout:       time.Second,
		SMTPFrom:              "noreply@test.local",
		AdminEmail:            "admin@test.local",
	}
}

type fakeUsersRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.User
	// createErr, when set, fails the next Create call and resets.
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: make(map[string]*models.User)}
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return nil, err
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return nil, common.ErrConflict
		}
	}
	f.seq++
	cp := *user
	cp.ID = fmt.Sprintf("u%d", f.seq)
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsersRepo) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expires
	return nil
}

func (f *fakeUsersRepo) GetByValidResetToken(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetExpires != nil && u.ResetExpires.After(time.Now()) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpires = nil
	return nil
}

func (f *fakeUsersRepo) UpdateContact(ctx context.Context, email, houseNo, barangay, number string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
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

type fakeAdminsRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.Admin
}

func newFakeAdminsRepo() *fakeAdminsRepo {
	return &fakeAdminsRepo{byID: make(map[string]*models.Admin)}
}

func (f *fakeAdminsRepo) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == admin.Email {
			return nil, common.ErrConflict
		}
	}
	f.seq++
	cp := *admin
	cp.ID = fmt.Sprintf("a%d", f.seq)
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeAdminsRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAdminsRepo) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.byID[id]; ok {
		out := *a
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeAdminsRepo) List(ctx context.Context) ([]*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Admin, 0, len(f.byID))
	for _, a := range f.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

type fakeReportsRepo struct {
	mu      sync.Mutex
	seq     int64
	records []*models.Report
	// createErr, when set, fails the next Create call and resets.
	createErr error
}

func newFakeReportsRepo() *fakeReportsRepo { return &fakeReportsRepo{} }

func (f *fakeReportsRepo) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return nil, err
	}
	f.seq++
	cp := *report
	cp.ID = f.seq
	cp.CreatedAt = time.Now()
	f.records = append(f.records, &cp)
	out := cp
	return &out, nil
}

func (f *fakeReportsRepo) ListAll(ctx context.Context) ([]*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Report, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		cp := *f.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeReportsRepo) ListBySubmitter(ctx context.Context, userID string) ([]*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Report
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].PostedBy == userID {
			cp := *f.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReportsRepo) ListResponded(ctx context.Context) ([]*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Report
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].Responded {
			cp := *f.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReportsRepo) MarkResponded(ctx context.Context, reportID string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ReportID == reportID {
			r.Responded = true
			out := *r
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeReportsRepo) MarkArchived(ctx context.Context, reportID string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ReportID == reportID {
			r.Archived = true
			out := *r
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeReportsRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeEmergenciesRepo struct {
	mu      sync.Mutex
	seq     int64
	records []*models.Emergency
}

func newFakeEmergenciesRepo() *fakeEmergenciesRepo { return &fakeEmergenciesRepo{} }

func (f *fakeEmergenciesRepo) Create(ctx context.Context, emergency *models.Emergency) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cp := *emergency
	cp.ID = f.seq
	cp.CreatedAt = time.Now()
	f.records = append(f.records, &cp)
	out := cp
	return &out, nil
}

func (f *fakeEmergenciesRepo) ListAll(ctx context.Context) ([]*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Emergency, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		cp := *f.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEmergenciesRepo) ListBySubmitter(ctx context.Context, userID string) ([]*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Emergency
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].PostedBy == userID {
			cp := *f.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEmergenciesRepo) ListResponded(ctx context.Context) ([]*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Emergency
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].Responded {
			cp := *f.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEmergenciesRepo) MarkResponded(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.records {
		if e.EmergencyID == emergencyID {
			e.Responded = true
			out := *e
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeEmergenciesRepo) MarkArchived(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.records {
		if e.EmergencyID == emergencyID {
			e.Archived = true
			out := *e
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeEmergenciesRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.records {
		if e.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePostsRepo struct {
	mu      sync.Mutex
	seq     int64
	records []*models.Post
}

func newFakePostsRepo() *fakePostsRepo { return &fakePostsRepo{} }

func (f *fakePostsRepo) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cp := *post
	cp.ID = f.seq
	cp.CreatedAt = time.Now()
	f.records = append(f.records, &cp)
	out := cp
	return &out, nil
}

func (f *fakePostsRepo) ListAll(ctx context.Context) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Post, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		cp := *f.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

// failingCounters fails every increment; used to exercise allocation-abort
// paths.
type failingCounters struct {
	err error
}

func (f *failingCounters) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	return 0, fmt.Errorf("%w: %v", common.ErrAllocation, f.err)
}

func (f *failingCounters) EnsureInitialized(ctx context.Context, key string, start int64) error {
	return nil
}

type fakeRepoManager struct {
	counters    countersrepo.Repository
	users       *fakeUsersRepo
	admins      *fakeAdminsRepo
	reports     *fakeReportsRepo
	emergencies *fakeEmergenciesRepo
	posts       *fakePostsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		counters:    countersrepo.NewMemoryRepository(),
		users:       newFakeUsersRepo(),
		admins:      newFakeAdminsRepo(),
		reports:     newFakeReportsRepo(),
		emergencies: newFakeEmergenciesRepo(),
		posts:       newFakePostsRepo(),
	}
}

func (m *fakeRepoManager) Counters(db dbx.DBTX) countersrepo.Repository { return m.counters }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Admins(db dbx.DBTX) adminsrepo.Repository     { return m.admins }
func (m *fakeRepoManager) Reports(db dbx.DBTX) reportsrepo.Repository   { return m.reports }
func (m *fakeRepoManager) Emergencies(db dbx.DBTX) emergenciesrepo.Repository {
	return m.emergencies
}
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository       { return m.posts }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
