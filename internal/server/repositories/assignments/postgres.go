package assignments

import (
	"context"
	"fmt"
	"math"

	"github.com/dmitrijs2005/securelinks/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// IsAssigned reports whether principalID holds an assignment on the document.
func (r *PostgresRepository) IsAssigned(ctx context.Context, documentID uint64, principalID string) (bool, error) {
	if documentID > math.MaxInt64 || principalID == "" {
		return false, nil
	}

	query := `SELECT EXISTS (SELECT 1 FROM document_assignments WHERE document_id=$1 AND principal_id=$2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, int64(documentID), principalID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return ok, nil
}
