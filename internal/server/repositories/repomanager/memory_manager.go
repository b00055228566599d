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

// MemoryRepositoryManager hands out the same process-memory repositories for
// every handle. Pair it with dbx.MutexTransactor.
type MemoryRepositoryManager struct {
	rules       *rules.MemoryRepository
	docs        *docs.MemoryRepository
	assets      *assets.MemoryRepository
	controllers *controllers.MemoryRepository
	settings    *settings.MemoryRepository
}

// NewMemoryRepositoryManager returns a manager over empty repositories.
func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		rules:       rules.NewMemoryRepository(),
		docs:        docs.NewMemoryRepository(),
		assets:      assets.NewMemoryRepository(),
		controllers: controllers.NewMemoryRepository(),
		settings:    settings.NewMemoryRepository(),
	}
}

// RunMigrations is a no-op: memory repositories have no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Rules(dbx.DBTX) rules.Repository             { return m.rules }
func (m *MemoryRepositoryManager) Docs(dbx.DBTX) docs.Repository               { return m.docs }
func (m *MemoryRepositoryManager) Assets(dbx.DBTX) assets.Repository           { return m.assets }
func (m *MemoryRepositoryManager) Controllers(dbx.DBTX) controllers.Repository { return m.controllers }
func (m *MemoryRepositoryManager) Settings(dbx.DBTX) settings.Repository       { return m.settings }
