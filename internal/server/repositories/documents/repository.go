package documents

import (
	"context"

	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

// Repository reads document metadata owned by the document subsystem.
type Repository interface {
	GetDocument(ctx context.Context, id uint64) (*models.Document, error)
}
