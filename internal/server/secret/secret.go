// Package secret owns the per-installation signing secret. The secret is
// created once, on first start, and only read afterwards; losing it
// invalidates every link ever minted.
package secret

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securelinks/internal/common"
)

// Size is the length of a freshly generated secret.
const Size = 32

// Store hands out the installation secret.
type Store interface {
	// Secret returns a copy of the secret.
	Secret() []byte
}

// Repository persists the single secret value.
type Repository interface {
	// Get returns the stored secret or common.ErrorNotFound.
	Get(ctx context.Context) ([]byte, error)
	// InsertIfAbsent stores value unless a secret already exists.
	InsertIfAbsent(ctx context.Context, value []byte) error
}

type static struct {
	b []byte
}

// Static wraps a fixed secret, for tests and offline tooling.
func Static(b []byte) Store {
	return static{b: bytes.Clone(b)}
}

func (s static) Secret() []byte {
	return bytes.Clone(s.b)
}

// generate is a seam for tests.
var generate = func() []byte {
	return common.GenerateRandByteArray(Size)
}

// LoadOrCreate reads the secret from repo, creating it on first use. When
// two instances start at once both insert, one insert wins and both read
// back the winner.
func LoadOrCreate(ctx context.Context, repo Repository) (Store, error) {
	b, err := repo.Get(ctx)
	if err == nil {
		return Static(b), nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("load secret: %w", err)
	}

	fresh := generate()
	defer common.WipeByteArray(fresh)

	if err := repo.InsertIfAbsent(ctx, fresh); err != nil {
		return nil, fmt.Errorf("create secret: %w", err)
	}

	b, err = repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload secret: %w", err)
	}
	return Static(b), nil
}
