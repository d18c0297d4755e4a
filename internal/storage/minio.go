package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client     *minio.Client
	core       *minio.Core
	bucket     string
	publicBase string
}

// MinioConfig holds the connection settings for NewMinioStorage.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	PublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/assets"
	UseSSL     bool
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, cfg MinioConfig, lg *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		lg.Info("storage: created bucket", zap.String("bucket", cfg.Bucket))
	}

	if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStorage{
		client:     client,
		core:       &minio.Core{Client: client},
		bucket:     cfg.Bucket,
		publicBase: cfg.PublicBase,
	}, nil
}

// ListBuckets returns the buckets visible to the configured credentials.
func (s *MinioStorage) ListBuckets(ctx context.Context) ([]Bucket, error) {
	infos, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, unavailable("list buckets", err)
	}
	buckets := make([]Bucket, 0, len(infos))
	for _, b := range infos {
		buckets = append(buckets, Bucket{Name: b.Name, CreationDate: b.CreationDate})
	}
	return buckets, nil
}

// List fetches one ListObjectsV2 page. The high-level ListObjects iterator hides
// continuation tokens, so the Core API is used to pass them through untouched.
func (s *MinioStorage) List(ctx context.Context, opts ListOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, unavailable("list objects", err)
	}
	res, err := s.core.ListObjectsV2(s.bucket, opts.Prefix, "", opts.ContinuationToken, "", opts.PageSize())
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if opts.ContinuationToken != "" && resp.StatusCode == http.StatusBadRequest {
			return Page{}, fmt.Errorf("list objects: %w: %w", ErrInvalidToken, err)
		}
		return Page{}, unavailable("list objects", err)
	}

	objects := make([]Object, 0, len(res.Contents))
	for _, o := range res.Contents {
		objects = append(objects, Object{
			Key:          o.Key,
			Size:         o.Size,
			LastModified: o.LastModified,
			ETag:         trimETag(o.ETag),
		})
	}

	next := ""
	if res.IsTruncated {
		next = res.NextContinuationToken
	}
	return NewPage(objects, next), nil
}

// Upload streams reader to MinIO under key. size must be the exact byte count
// (pass -1 only if the size is genuinely unknown; MinIO then buffers it).
func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w: %w", key, ErrUploadFailed, err)
	}
	return nil
}

// Stat returns the metadata of the object at key.
func (s *MinioStorage) Stat(ctx context.Context, key string) (*Metadata, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("stat object %q: %w", key, ErrNotFound)
		}
		return nil, unavailable("stat object", err)
	}
	return &Metadata{
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
		ETag:         trimETag(info.ETag),
	}, nil
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isMinioNotFound(err) {
		return unavailable("remove object", err)
	}
	return nil
}

// PresignGet returns a signed GET URL valid for expires.
func (s *MinioStorage) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, nil)
	if err != nil {
		return "", unavailable("presign get", err)
	}
	return u.String(), nil
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/assets/uploads/1700000000000-photo.png"
func (s *MinioStorage) PublicURL(key string) string {
	return joinURL(s.publicBase, key)
}

func isMinioNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		resp = minio.ToErrorResponse(err)
	}
	return resp.Code == "NoSuchKey"
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
