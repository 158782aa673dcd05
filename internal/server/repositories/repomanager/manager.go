// Package repomanager bundles repository constructors behind one interface
// so services can obtain repositories bound to either the pool or an open
// transaction.
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

type RepositoryManager interface {
	Counters(db dbx.DBTX) counters.Repository
	Users(db dbx.DBTX) users.Repository
	Admins(db dbx.DBTX) admins.Repository
	Reports(db dbx.DBTX) reports.Repository
	Emergencies(db dbx.DBTX) emergencies.Repository
	Posts(db dbx.DBTX) posts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
