// Package minio resolves narrative document references to presigned download
// links on an S3-compatible object store.
package minio

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client claimtrack calls.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
}

var ErrBucketNotFound = errors.New(errors.ErrCodeNotFound, "bucket not found")

// NewMinIOClient connects, verifies credentials and creates the document
// bucket when missing.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, errors.InvalidParam("minio endpoint is required")
	}
	applyDefaults(cfg)

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	c := newClientWithAPI(api, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("minio client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClientWithAPI(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(cfg)
	return &MinIOClient{client: api, config: cfg, logger: log}
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "claim-documents"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}
}

func (c *MinIOClient) Bucket() string { return c.config.Bucket }

func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check bucket").WithDetail(c.config.Bucket)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create bucket").WithDetail(c.config.Bucket)
	}
	c.logger.Info("created bucket", logging.String("bucket", c.config.Bucket))
	return nil
}

// HealthCheck reports whether the store answers and the bucket exists.
func (c *MinIOClient) HealthCheck(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
	}
	if !exists {
		return ErrBucketNotFound.WithDetail(c.config.Bucket)
	}
	return nil
}

// ObjectExists treats a NoSuchKey response as absence rather than failure.
func (c *MinIOClient) ObjectExists(ctx context.Context, objectName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.Bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat object").WithDetail(objectName)
}

// PresignedGetURL uses the configured expiry when expiry is zero.
func (c *MinIOClient) PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = c.config.PresignExpiry
	}
	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "failed to presign object").WithDetail(objectName)
	}
	return u.String(), nil
}
