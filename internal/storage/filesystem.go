package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/youruser/coverapp/internal/util"
)

// FilesystemStore keeps uploads in a local directory.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates dir if needed.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) Save(ctx context.Context, filename string, r io.Reader, _ int64, contentType string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := UniqueName(filename)
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	return &Object{
		Key:         key,
		Path:        path,
		Size:        n,
		ContentType: contentType,
	}, nil
}
