package secrets

import "context"

type Repository interface {
	Get(ctx context.Context) ([]byte, error)
	InsertIfAbsent(ctx context.Context, value []byte) error
}
