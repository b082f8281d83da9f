package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"picstream/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

var _ ObjectStore = (*MinioStore)(nil)

// MinioStore stores post images in a MinIO (or S3-compatible) bucket.
type MinioStore struct {
	api        minioAPI
	bucket     string
	publicBase string
}

// NewMinioStore creates a store from application config, dialing the
// configured endpoint and ensuring the bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return NewMinioStoreWithAPI(ctx, minioClientWrapper{c: client}, cfg.StorageBucket, cfg.PublicObjectURL())
}

// NewMinioStoreWithAPI allows injecting a mockable API (used in tests).
func NewMinioStoreWithAPI(ctx context.Context, api minioAPI, bucket, publicBase string) (*MinioStore, error) {
	s := &MinioStore{
		api:        api,
		bucket:     bucket,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}

	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return s, nil
}

// ensureBucketExists creates the bucket if it doesn't exist
func (s *MinioStore) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Upload stores the object and returns the public URL it will be served from.
func (s *MinioStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.api.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.publicBase + "/" + key, nil
}

// Delete removes the object with the given key.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// KeyFromURL maps a public URL back to its object key.
func (s *MinioStore) KeyFromURL(rawURL string) (string, error) {
	return parseKeyFromURL(rawURL, s.publicBase)
}
