// Package minio stores catalog exports in an S3-compatible bucket and
// hands out presigned download links.
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client the store uses.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

const (
	defaultBucket        = "exometrics-exports"
	defaultPresignExpiry = time.Hour
	exportRetentionDays  = 30
)

// Client owns the export bucket.
type Client struct {
	api    MinIOAPI
	bucket string
	expiry time.Duration
	logger logging.Logger
}

// NewClient connects, verifies credentials and ensures the bucket exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint required")
	}
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	c := NewClientWithAPI(api, cfg.Bucket, cfg.PresignExpiry, log)
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func NewClientWithAPI(api MinIOAPI, bucket string, expiry time.Duration, log logging.Logger) *Client {
	if bucket == "" {
		bucket = defaultBucket
	}
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	return &Client{api: api, bucket: bucket, expiry: expiry, logger: log.Named("minio")}
}

func (c *Client) Bucket() string { return c.bucket }

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListBuckets(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	return nil
}

// EnsureBucket creates the bucket when missing and expires exports after
// thirty days. A lifecycle failure is logged, not returned.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to check bucket existence")
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrap(err, errors.CodeStorageError, "failed to create bucket "+c.bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", c.bucket))
	}

	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{{
		ID:         "exports-cleanup",
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: ExportPrefix},
		Expiration: lifecycle.Expiration{Days: exportRetentionDays},
	}}
	if err := c.api.SetBucketLifecycle(ctx, c.bucket, lc); err != nil {
		c.logger.Warn("Failed to set lifecycle for export bucket", logging.Err(err))
	}
	return nil
}

//Personal.AI order the ending
