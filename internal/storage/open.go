package storage

import (
	"context"
	"fmt"

	"statementapi/internal/config"
)

// Open builds the Storage selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(ctx, cfg.MinIO)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// Bucket returns the bucket name the selected driver writes to.
func Bucket(cfg config.StorageConfig) string {
	if cfg.Driver == "s3" {
		return cfg.S3.Bucket
	}
	return cfg.MinIO.Bucket
}
