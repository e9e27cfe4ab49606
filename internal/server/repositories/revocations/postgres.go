package revocations

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securelinks/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Revoke is idempotent: revoking the same digest twice is not an error.
func (r *PostgresRepository) Revoke(ctx context.Context, digest [32]byte) error {
	query := `INSERT INTO revoked_links (digest) VALUES ($1) ON CONFLICT (digest) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, digest[:]); err != nil {
		return fmt.Errorf("failed to revoke link: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, digest [32]byte) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM revoked_links WHERE digest=$1)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, digest[:]).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return ok, nil
}
