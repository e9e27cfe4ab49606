// Package secrets persists the single installation secret row.
package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns common.ErrorNotFound until a secret has been stored.
func (r *PostgresRepository) Get(ctx context.Context) ([]byte, error) {
	query := `SELECT value FROM installation_secret WHERE id=1`

	var value []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select secret: %w", err)
	}
	return value, nil
}

// InsertIfAbsent stores value unless another process stored one first; the
// caller re-reads to learn which secret won.
func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, value []byte) error {
	query := `INSERT INTO installation_secret (id, value) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, value); err != nil {
		return fmt.Errorf("failed to insert secret: %w", err)
	}
	return nil
}
