package revocations

import "context"

// Repository stores digests of revoked tokens.
type Repository interface {
	Revoke(ctx context.Context, digest [32]byte) error
	IsRevoked(ctx context.Context, digest [32]byte) (bool, error)
}
