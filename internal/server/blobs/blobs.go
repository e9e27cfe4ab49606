// Package blobs opens the stored bytes of document files.
package blobs

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securelinks/internal/server/config"
)

// Blob is an open file body. Size is -1 when the backend does not know it.
// The caller must close Body.
type Blob struct {
	Body io.ReadCloser
	Size int64
}

// Source opens blobs by storage key. Unknown keys yield common.ErrorNotFound.
type Source interface {
	Open(ctx context.Context, storageKey string) (*Blob, error)
}

// New builds the source selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return NewS3Source(ctx, cfg)
	case config.BlobBackendDir:
		return NewDirSource(cfg.BlobDir)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

type ctxReader struct {
	ctx context.Context
	io.ReadCloser
}

func (r ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.ReadCloser.Read(p)
}

// WithContext makes reads from rc fail once ctx is done, so a stream to a
// gone client stops at the next chunk.
func WithContext(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	return ctxReader{ctx: ctx, ReadCloser: rc}
}
