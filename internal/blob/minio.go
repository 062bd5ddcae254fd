package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds connection parameters for the object-storage backend.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	PublicRead bool // apply a public-read bucket policy so the dashboard can link objects directly
}

// MinioStore implements Store on top of a MinIO (or S3-compatible) bucket.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicRead bool
}

// NewMinioStore connects, ensures the bucket exists and, when configured,
// makes its objects publicly readable.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio store: init client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio store: check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio store: create bucket %q: %w", cfg.Bucket, err)
		}
		log.Printf("minio store: created bucket %q", cfg.Bucket)
	}

	if cfg.PublicRead {
		policy := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`, cfg.Bucket)
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, policy); err != nil {
			// Links degrade to the admin download route, uploads still work.
			log.Printf("Warning: minio store: set public-read policy on %q: %v", cfg.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, publicRead: cfg.PublicRead}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType, downloadName string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if downloadName != "" {
		// RFC 5987 encoding so browsers recover the original (possibly
		// non-ASCII) filename even though the storage key is sanitized.
		opts.ContentDisposition = fmt.Sprintf("attachment; filename*=utf-8''%s", url.PathEscape(downloadName))
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("minio store: put %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio store: get %q: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("minio store: read %q: %w", key, err)
	}
	return data, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio store: delete %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the direct object URL when the bucket is public-read.
func (s *MinioStore) PublicURL(key string) string {
	if !s.publicRead {
		return ""
	}
	u := *s.client.EndpointURL()
	u.Path = "/" + s.bucket + "/" + key
	return u.String()
}
