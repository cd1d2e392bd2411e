package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sealpost/internal/server/identity"
)

type InMemoryRepositoryManager struct {
	identities identity.Repository
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{identities: identity.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) Identities() identity.Repository {
	return m.identities
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
