package storage

import (
	"context"
	"time"
)

// IS3Client S3-совместимое хранилище (MinIO) для архива отчётов
type IS3Client interface {
	PutObject(ctx context.Context, path string, data []byte, contentType string) error
	GetFile(ctx context.Context, path string) ([]byte, error)
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}
