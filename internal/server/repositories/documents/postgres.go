package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/dbx"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

// PostgresRepository implements document lookups over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetDocument returns the document with its files ordered by position.
// Unknown ids yield common.ErrorNotFound. Positions must be contiguous from
// 0; a gap means the file list is being rewritten and is reported as an
// error rather than silently shifting file indexes.
func (r *PostgresRepository) GetDocument(ctx context.Context, id uint64) (*models.Document, error) {
	if id > math.MaxInt64 {
		return nil, common.ErrorNotFound
	}

	query := `SELECT id, title, visibility FROM documents WHERE id=$1`

	doc := &models.Document{}
	var docID int64
	err := r.db.QueryRowContext(ctx, query, int64(id)).Scan(&docID, &doc.Title, &doc.Visibility)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select document: %w", err)
	}
	doc.ID = uint64(docID)

	files, err := r.selectFiles(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Files = files

	return doc, nil
}

func (r *PostgresRepository) selectFiles(ctx context.Context, documentID int64) ([]models.File, error) {
	query := ` SELECT position, name, storage_key, size FROM document_files
		WHERE document_id=$1 ORDER BY position
		`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []models.File
	for rows.Next() {
		var position int
		var item models.File
		if err := rows.Scan(&position, &item.Name, &item.StorageKey, &item.Size); err != nil {
			return nil, err
		}
		if position != len(result) {
			return nil, fmt.Errorf("document %d: file position %d out of sequence", documentID, position)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
