package minio

import (
	"context"
	"net/url"
	"time"

	"creatorplane/pkg/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Client = fx.Module("minio.client", fx.Provide(registerClient, NewStorage))

func registerClient(c *config.Config) *minio.Client {
	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		zap.L().Fatal("failed to create MinIO client", zap.Error(err))
	}
	exists, errBucketExists := client.BucketExists(context.Background(), c.Minio.BucketName)
	if errBucketExists != nil {
		zap.L().Fatal("failed to check if bucket exists", zap.String("endpoint", c.Minio.Endpoint), zap.Error(errBucketExists))
	}
	zap.L().Info("MinIO client initialized", zap.String("endpoint", c.Minio.Endpoint), zap.Bool("bucketExists", exists))
	return client
}

// ObjectInfo carries the subset of object metadata used for upload validation.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Storage exposes the object operations the submission flow needs.
type Storage interface {
	PresignPut(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	Stat(ctx context.Context, objectKey string) (*ObjectInfo, error)
}

type objectStorage struct {
	client *minio.Client
	bucket string
}

func NewStorage(client *minio.Client, cfg *config.Config) Storage {
	return &objectStorage{
		client: client,
		bucket: cfg.Minio.BucketName,
	}
}

func (s *objectStorage) PresignPut(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, expiry)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *objectStorage) PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *objectStorage) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, err
	}
	return &ObjectInfo{
		Key:         info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}
