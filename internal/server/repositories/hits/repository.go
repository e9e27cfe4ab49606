package hits

import (
	"context"

	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

type Repository interface {
	Increment(ctx context.Context, hit models.Hit) error
}
