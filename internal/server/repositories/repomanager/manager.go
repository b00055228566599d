package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/assets"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/controllers"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/docs"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/rules"
	"github.com/dmitrijs2005/satellite/internal/server/repositories/settings"
)

// RepositoryManager vends repositories bound to a unit-of-work handle.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Rules(db dbx.DBTX) rules.Repository
	Docs(db dbx.DBTX) docs.Repository
	Assets(db dbx.DBTX) assets.Repository
	Controllers(db dbx.DBTX) controllers.Repository
	Settings(db dbx.DBTX) settings.Repository
}
