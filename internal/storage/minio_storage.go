package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	s := &MinioStorage{client: client, bucket: bucket}
	if err := s.EnsureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}
	return s, nil
}

func (m *MinioStorage) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *MinioStorage) Save(ctx context.Context, id string, data io.Reader, size int64) error {
	_, err := m.client.PutObject(ctx, m.bucket, id, data, size, minio.PutObjectOptions{
		ContentType: PDFContentType,
	})
	return err
}

func (m *MinioStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, id, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return m.client.GetObject(ctx, m.bucket, id, minio.GetObjectOptions{})
}

func (m *MinioStorage) Delete(ctx context.Context, id string) error {
	return m.client.RemoveObject(ctx, m.bucket, id, minio.RemoveObjectOptions{})
}
