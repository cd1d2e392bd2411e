// Package db selects and wires the identity repository backend.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sealpost/internal/server/identity"
)

// MemoryDSN selects the in-memory repository instead of Postgres.
const MemoryDSN = "memory"

// RepositoryManager owns the storage backend and hands out repositories.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Identities() identity.Repository
	Close() error
}

// NewRepositoryManager picks the backend from the DSN: "memory" for the
// in-process store, anything else is treated as a Postgres DSN.
func NewRepositoryManager(dsn string) (RepositoryManager, error) {
	if dsn == MemoryDSN || dsn == "" {
		return NewInMemoryRepositoryManager(), nil
	}
	return NewPostgresRepositoryManager(dsn)
}
