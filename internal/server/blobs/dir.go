package blobs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securelinks/internal/common"
)

// DirSource serves blobs from a local directory. Storage keys are
// slash-separated paths relative to the root and may not leave it.
type DirSource struct {
	root *os.Root
}

func NewDirSource(dir string) (*DirSource, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open blob dir: %w", err)
	}
	return &DirSource{root: root}, nil
}

func (s *DirSource) Open(ctx context.Context, storageKey string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.FromSlash(storageKey)
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("storage key %q escapes blob dir: %w", storageKey, common.ErrorNotFound)
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", storageKey, common.ErrorNotFound)
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("blob %q is a directory: %w", storageKey, common.ErrorNotFound)
	}

	return &Blob{Body: f, Size: info.Size()}, nil
}

func (s *DirSource) Close() error {
	return s.root.Close()
}
