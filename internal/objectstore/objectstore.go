// Package objectstore archives uploaded claim documents in an S3-compatible
// bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// bucketAPI is the slice of *minio.Client the archive needs.
type bucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Config struct {
	URL       string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type Store struct {
	client bucketAPI
	bucket string
	now    func() time.Time
}

// New connects lazily; call EnsureBucket before the first Put.
func New(cfg Config) (*Store, error) {
	endpoint, secure, err := splitEndpoint(cfg.URL, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// splitEndpoint accepts host:port or a URL; an https scheme implies TLS.
func splitEndpoint(raw string, useSSL bool) (string, bool, error) {
	if raw == "" {
		return "", false, fmt.Errorf("object store url not configured")
	}
	if !strings.Contains(raw, "://") {
		return raw, useSSL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("object store url: %w", err)
	}
	return u.Host, useSSL || u.Scheme == "https", nil
}

func (s *Store) Bucket() string { return s.bucket }

func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put stores data under documents/<kind>/<yyyy>/<mm>/<uuid><ext> and returns
// the object key.
func (s *Store) Put(ctx context.Context, kind string, data []byte, contentType string) (string, error) {
	key := ObjectKey(kind, contentType, s.now(), uuid.New())
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func ObjectKey(kind, contentType string, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("documents/%s/%04d/%02d/%s%s", kind, at.Year(), int(at.Month()), id, extension(contentType))
}

func extension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
