package minio

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// ExportPrefix is the key prefix of every catalog export.
const ExportPrefix = "exports/"

const csvContentType = "text/csv; charset=utf-8"

// ExportKey names an export object: exports/<yyyy-mm-dd>/<id>.csv.
func ExportKey(id uuid.UUID, at time.Time) string {
	return path.Join(ExportPrefix, at.UTC().Format("2006-01-02"), id.String()+".csv")
}

// Upload is the outcome of PutExport.
type Upload struct {
	Key  string
	Size int64
	ETag string
}

// PutExport stores a CSV export. size may be -1 when unknown.
func (c *Client) PutExport(ctx context.Context, key string, r io.Reader, size int64) (*Upload, error) {
	info, err := c.api.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:        csvContentType,
		ContentDisposition: `attachment; filename="` + path.Base(key) + `"`,
	})
	if err != nil {
		c.logger.Error("Export upload failed", logging.String("key", key), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "failed to upload export")
	}
	c.logger.Debug("Export uploaded", logging.String("key", key), logging.Int64("size", info.Size))
	return &Upload{Key: key, Size: info.Size, ETag: info.ETag}, nil
}

// PresignExport returns a time-limited download URL for an existing export.
func (c *Client) PresignExport(ctx context.Context, key string) (string, error) {
	if _, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", errors.New(errors.ErrCodeExportNotFound, "export not found").WithDetail(key)
		}
		return "", errors.Wrap(err, errors.CodeStorageError, "failed to stat export")
	}
	u, err := c.api.PresignedGetObject(ctx, c.bucket, key, c.expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorageError, "failed to presign export")
	}
	return u.String(), nil
}

func (c *Client) DeleteExport(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to delete export")
	}
	return nil
}

//Personal.AI order the ending
