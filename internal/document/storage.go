package document

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo is what the store knows about a stored file.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStore is the subset of an S3 compatible store the documents need.
type ObjectStore interface {
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (*url.URL, error)
	Remove(ctx context.Context, key string) error
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the bucket named in settings. It returns nil and
// no error when storage is not configured.
func NewMinioStore(settings config.StorageSettings) (ObjectStore, error) {
	if settings.Endpoint == "" || settings.Bucket == "" {
		return nil, nil
	}

	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
		Region: settings.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &minioStore{client: client, bucket: settings.Bucket}, nil
}

func (s *minioStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &ObjectInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

func (s *minioStore) PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (*url.URL, error) {
	params := url.Values{}
	if filename != "" {
		params.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	return s.client.PresignedGetObject(ctx, s.bucket, key, expiry, params)
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return err
}
