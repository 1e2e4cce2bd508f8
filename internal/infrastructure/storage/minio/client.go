// Package minio stores batch reports in an S3-compatible bucket through
// minio-go.  Report objects are written once under reports/<run-id>.<ext>
// and expire through a bucket lifecycle rule.
package minio

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client used here.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
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
	Prefix          string        `mapstructure:"prefix"`
	RetentionDays   int           `mapstructure:"retention_days"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "simpol-reports"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "reports/"
	}
	if !strings.HasSuffix(cfg.Prefix, "/") {
		cfg.Prefix += "/"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

var ErrMinIOClientClosed = errors.New(errors.ErrCodeServiceUnavailable, "minio client is closed")

// MinIOClient owns the connection and the report bucket.
type MinIOClient struct {
	client MinIOAPI
	config MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewMinIOClient connects, then creates the bucket and its expiry rule when
// missing.
func NewMinIOClient(cfg MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	c := newMinIOClient(client, cfg, log)
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", c.config.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newMinIOClient(api MinIOAPI, cfg MinIOConfig, log logging.Logger) *MinIOClient {
	applyDefaults(&cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}
}

// EnsureBucket creates the report bucket if needed and installs the expiry
// rule.  A lifecycle failure is logged, not returned.
func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	bucket := c.config.Bucket
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check bucket existence")
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create bucket").WithDetail(bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}

	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{{
		ID:         "report-expiry",
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: c.config.Prefix},
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(c.config.RetentionDays)},
	}}
	if err := c.client.SetBucketLifecycle(ctx, bucket, lc); err != nil {
		c.logger.Warn("Failed to set lifecycle for report bucket", logging.Err(err))
	}
	return nil
}

func (c *MinIOClient) Bucket() string { return c.config.Bucket }

func (c *MinIOClient) api() (MinIOAPI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrMinIOClientClosed
	}
	return c.client, nil
}

func (c *MinIOClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// HealthCheck lists buckets and confirms the report bucket exists.
func (c *MinIOClient) HealthCheck(ctx context.Context) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	if _, err := api.ListBuckets(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
	}
	exists, err := api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
	}
	if !exists {
		return errors.New(errors.ErrCodeServiceUnavailable, "report bucket missing").WithDetail(c.config.Bucket)
	}
	return nil
}

//Personal.AI order the ending
