package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"flatfinder/internal/app/handlers/listings"
)

// Config points the photo store at an S3-compatible bucket.
type Config struct {
	Endpoint      string
	UseSSL        bool
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// PhotoStore keeps listing photos in a bucket that is readable by anyone.
type PhotoStore struct {
	bucket        string
	publicBaseURL string
	client        *minio.Client
	logger        *slog.Logger

	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewPhotoStore(cfg Config, logger *slog.Logger) (*PhotoStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(cfg.PublicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &PhotoStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        client,
		logger:        logger,
	}, nil
}

// Upload stores the object under key and returns its public URL. size may
// be -1 when unknown.
func (s *PhotoStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = cleanKey(key)
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	publicURL := ObjectURL(s.publicBaseURL, s.bucket, key)
	if s.logger != nil {
		s.logger.Debug("photo stored", "bucket", s.bucket, "key", key)
	}
	return publicURL, nil
}

func (s *PhotoStore) Remove(ctx context.Context, key string) error {
	key = cleanKey(key)
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("s3: remove object: %w", err)
	}
	return nil
}

func (s *PhotoStore) ensureBucket(ctx context.Context) error {
	s.bucketInitOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
			s.bucketInitErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return s.bucketInitErr
}

// Unconfigured rejects every upload; it stands in when no bucket is set.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", listings.ErrPhotoStorageUnavailable
}

func (Unconfigured) Remove(context.Context, string) error { return nil }

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// ObjectURL joins the public base, bucket and key in path style.
func ObjectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, cleanKey(key))
}

func cleanKey(key string) string {
	return strings.Trim(strings.TrimSpace(key), "/")
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ listings.PhotoStore = (*PhotoStore)(nil)
var _ listings.PhotoStore = Unconfigured{}
