package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/storage"
	"github.com/minio/minio-go/v7"
)

const defaultPresignTTL = 5 * time.Minute

// Client обёртка над minio.Client для архива отчётов
type Client struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

// NewClient создаёт новый S3 клиент
func NewClient(client *minio.Client, bucket string, log *slog.Logger) storage.IS3Client {
	return &Client{
		client: client,
		bucket: bucket,
		log:    log,
	}
}

// PutObject кладёт объект целиком
func (c *Client) PutObject(ctx context.Context, path string, data []byte, contentType string) error {
	info, err := c.client.PutObject(ctx, c.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}

	c.log.Debug("object stored", "path", path, "size", info.Size, "etag", info.ETag)
	return nil
}

// GetFile получает файл по пути; отсутствующий объект - domain.ErrNotFound
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, c.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}

	return data, nil
}

// ListFiles получает список файлов по префиксу
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	objectCh := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, object.Err)
		}

		// директории
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		files = append(files, object.Key)
	}

	return files, nil
}

// GetPresignedURL генерирует presigned URL для файла
func (c *Client) GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = defaultPresignTTL
	}

	url, err := c.client.PresignedGetObject(ctx, c.bucket, path, expires, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s: %w", path, err)
	}

	return url.String(), nil
}
