package minio

import (
	"context"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Adaptive-Intelligence-Lab/BeePoseEstimation/internal/domain/port"
)

// Storage fetches annotation and video inputs referenced by
// s3://bucket/key paths into the local temp dir before the pipeline
// runs. The converter never writes back to object storage.
type Storage struct {
	client *miniogo.Client
}

var _ port.ObjectStorage = (*Storage)(nil)

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Storage{client: client}, nil
}

func (s *Storage) FetchObject(ctx context.Context, bucket, key, destPath string) error {
	if err := s.client.FGetObject(ctx, bucket, key, destPath, miniogo.GetObjectOptions{}); err != nil {
		return fmt.Errorf("fetch s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
