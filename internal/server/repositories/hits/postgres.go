package hits

import (
	"context"
	"fmt"
	"math"

	"github.com/dmitrijs2005/securelinks/internal/dbx"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Increment bumps the counter for (document, file, kind), creating the row
// on first hit.
func (r *PostgresRepository) Increment(ctx context.Context, hit models.Hit) error {
	if hit.DocumentID > math.MaxInt64 {
		return fmt.Errorf("document id %d out of range", hit.DocumentID)
	}

	query := `
		INSERT INTO link_hits (document_id, file_index, kind, hits, last_hit_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (document_id, file_index, kind)
		DO UPDATE SET hits = link_hits.hits + 1, last_hit_at = now()
	`
	_, err := r.db.ExecContext(ctx, query, int64(hit.DocumentID), hit.FileColumn(), int16(hit.Kind))
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	return nil
}
