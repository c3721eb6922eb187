package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"statementapi/internal/config"
)

func TestNewMinIO_ConfigValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{"missing endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}, "endpoint is required"},
		{"missing credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "c"}, "credentials are required"},
		{"missing bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(ctx, tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewS3_ConfigValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3(ctx, config.S3Config{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3(ctx, config.S3Config{Region: "us-east-1", Bucket: "b", AccessKeyID: "only-id"})
	assert.ErrorContains(t, err, "set together")
}

func TestNewS3_StaticCredentials(t *testing.T) {
	s, err := NewS3(context.Background(), config.S3Config{
		Region:          "eu-west-1",
		Bucket:          "financial-statements",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	assert.NoError(t, err)
	assert.NotNil(t, s)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.ErrorContains(t, err, "unsupported storage driver")
}

func TestBucket(t *testing.T) {
	cfg := config.StorageConfig{
		Driver: "minio",
		MinIO:  config.MinIOConfig{Bucket: "m"},
		S3:     config.S3Config{Bucket: "s"},
	}
	assert.Equal(t, "m", Bucket(cfg))

	cfg.Driver = "s3"
	assert.Equal(t, "s", Bucket(cfg))
}

func TestNotFoundMapping(t *testing.T) {
	assert.True(t, minioNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, minioNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, minioNotFound(errors.New("boom")))

	assert.True(t, s3NotFound(fmt.Errorf("get: %w", &types.NoSuchKey{})))
	assert.True(t, s3NotFound(&types.NotFound{}))
	assert.False(t, s3NotFound(errors.New("boom")))
}
