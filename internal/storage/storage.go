package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/youruser/coverapp/internal/config"
)

// Object describes a stored upload.
type Object struct {
	Key         string
	Path        string
	Size        int64
	ContentType string
}

// Store persists uploaded images under collision-free names.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (*Object, error)
}

// New builds the store selected by cfg.Storage.Driver.
func New(cfg *config.Config, logger *zap.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	fields := []zap.Field{zap.String("driver", cfg.Storage.Driver)}

	switch cfg.Storage.Driver {
	case config.DriverFilesystem:
		fields = append(fields, zap.String("upload_dir", cfg.Storage.UploadDir))
		store, err = NewFilesystemStore(cfg.Storage.UploadDir)
	case config.DriverMinIO:
		fields = append(fields, zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", cfg.MinIO.Bucket))
		store, err = NewMinIOStore(cfg.MinIO)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("upload storage ready", fields...)
	return store, nil
}
