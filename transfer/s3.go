// Package transfer uploads processing output to external destinations:
// S3-compatible object storage, SFTP sites, and plain FTP sites. Uploads are
// synchronous and return the remote path on success.
package transfer

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// S3Uploader uploads files to one bucket of an S3-compatible endpoint.
type S3Uploader struct {
	client *minio.Client
	bucket string
}

// NewS3Uploader builds a client for the configured endpoint and bucket.
func NewS3Uploader(cfg config.S3Config) (*S3Uploader, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 endpoint and bucket required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "build s3 client for %q", cfg.Endpoint)
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket}, nil
}

// UploadFile uploads a local file under the given object key, returning the
// key.
func (u *S3Uploader) UploadFile(ctx context.Context, sourcePath, objectKey string) (string, error) {
	info, err := u.client.FPutObject(ctx, u.bucket, objectKey, sourcePath,
		minio.PutObjectOptions{})
	if err != nil {
		return "", errors.Wrapf(err, "upload %q to s3 key %q", sourcePath, objectKey)
	}
	logger.Logger.Infow("Uploaded file to object storage",
		"source", sourcePath, "bucket", u.bucket, "key", objectKey, "size", info.Size)
	return objectKey, nil
}

// ShareLink returns a time-limited download URL for an uploaded object.
func (u *S3Uploader) ShareLink(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	shareURL, err := u.client.PresignedGetObject(ctx, u.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrapf(err, "presign s3 key %q", objectKey)
	}
	return shareURL.String(), nil
}
