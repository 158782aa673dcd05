package repomanager

import (
	"context"
	"database/sql"

	"github.com/rcabrera/citywatch/internal/dbx"
	"github.com/rcabrera/citywatch/internal/server/repositories/admins"
	"github.com/rcabrera/citywatch/internal/server/repositories/counters"
	"github.com/rcabrera/citywatch/internal/server/repositories/emergencies"
	"github.com/rcabrera/citywatch/internal/server/repositories/posts"
	"github.com/rcabrera/citywatch/internal/server/repositories/reports"
	"github.com/rcabrera/citywatch/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out the in-memory repositories. It ignores
// the DBTX argument: there is no database, so there are no transactions.
// Backs tests and local development.
type MemoryRepositoryManager struct {
	counters    *counters.MemoryRepository
	users       *users.MemoryRepository
	admins      *admins.MemoryRepository
	reports     *reports.MemoryRepository
	emergencies *emergencies.MemoryRepository
	posts       *posts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		counters:    counters.NewMemoryRepository(),
		users:       users.NewMemoryRepository(),
		admins:      admins.NewMemoryRepository(),
		reports:     reports.NewMemoryRepository(),
		emergencies: emergencies.NewMemoryRepository(),
		posts:       posts.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Counters(db dbx.DBTX) counters.Repository { return m.counters }

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Admins(db dbx.DBTX) admins.Repository { return m.admins }

func (m *MemoryRepositoryManager) Reports(db dbx.DBTX) reports.Repository { return m.reports }

func (m *MemoryRepositoryManager) Emergencies(db dbx.DBTX) emergencies.Repository {
	return m.emergencies
}

func (m *MemoryRepositoryManager) Posts(db dbx.DBTX) posts.Repository { return m.posts }

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
