package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Host      string `envconfig:"HOST"`       // localhost:9000
	AccessKey string `envconfig:"ACCESS_KEY"` // minioadmin
	SecretKey string `envconfig:"SECRET_KEY"` // minioadmin
	Bucket    string `envconfig:"BUCKET" default:"reports"`
	Region    string `envconfig:"REGION"`
	UseSSL    bool   `envconfig:"USE_SSL" default:"false"` // false для локальной разработки
	// CreateBucket создать bucket при старте, если его нет
	CreateBucket bool `envconfig:"CREATE_BUCKET" default:"true"`
	// URLTTL срок жизни presigned-ссылки на архив отчёта
	URLTTL time.Duration `envconfig:"URL_TTL" default:"24h"`
}

// Enabled архив отчётов включается только при заданном хосте и ключах
func (c *Config) Enabled() bool {
	return c.Host != "" && c.AccessKey != "" && c.SecretKey != ""
}

// NewClient создаёт MinIO клиент и проверяет bucket
func (c *Config) NewClient(ctx context.Context) (*minio.Client, error) {
	client, err := minio.New(c.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if !c.CreateBucket {
			return nil, fmt.Errorf("bucket %s does not exist", c.Bucket)
		}
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{Region: c.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", c.Bucket, err)
		}
	}

	return client, nil
}
