package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
)

// MemoryRepositoryManager serves one shared in-memory store whatever DBTX it
// is given. Transactions opened by the caller do not roll it back.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

// NewMemoryRepositoryManager wraps repo, or a fresh store when repo is nil.
func NewMemoryRepositoryManager(repo *accounts.MemoryRepository) *MemoryRepositoryManager {
	if repo == nil {
		repo = accounts.NewMemoryRepository()
	}
	return &MemoryRepositoryManager{accounts: repo}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}
