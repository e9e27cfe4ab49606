package assignments

import "context"

type Repository interface {
	IsAssigned(ctx context.Context, documentID uint64, principalID string) (bool, error)
}
