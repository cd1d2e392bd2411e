package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/sealpost/internal/common"
	"github.com/dmitrijs2005/sealpost/internal/dbx"
)

// PostgresRepository persists identities through database/sql over pgx.
// It exists for deployments that want registrations to survive restarts;
// envelopes and replay state stay in memory regardless.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, id *Identity) (*Identity, error) {
	query :=
		`INSERT INTO identities (email, sign_pub, enc_pub, sealed_master, version, rcpt_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		`

	stored := *id
	err := r.db.QueryRowContext(ctx, query,
		id.Email, id.SignPub, id.EncPub, id.SealedMaster, id.Version, id.RcptID,
	).Scan(&stored.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &stored, nil
}

const selectColumns = `email, sign_pub, enc_pub, sealed_master, version, rcpt_id, created_at`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	query := `SELECT ` + selectColumns + ` FROM identities WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByRcptID(ctx context.Context, rcptID string) (*Identity, error) {
	query := `SELECT ` + selectColumns + ` FROM identities WHERE rcpt_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, rcptID))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*Identity, error) {
	id := &Identity{}
	err := row.Scan(&id.Email, &id.SignPub, &id.EncPub, &id.SealedMaster, &id.Version, &id.RcptID, &id.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Identity, error) {
	query := `SELECT ` + selectColumns + ` FROM identities ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*Identity
	for rows.Next() {
		id := &Identity{}
		if err := rows.Scan(&id.Email, &id.SignPub, &id.EncPub, &id.SealedMaster, &id.Version, &id.RcptID, &id.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
