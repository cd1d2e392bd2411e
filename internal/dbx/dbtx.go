// Package dbx holds the minimal database/sql surface shared by
// repositories. Both *sql.DB and *sql.Tx satisfy DBTX, so repositories can
// run inside or outside a transaction without knowing which.
package dbx

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
