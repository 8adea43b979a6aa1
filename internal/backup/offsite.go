package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration for offsite copies.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Uploader pushes snapshot documents to S3-compatible storage. It is disabled
// when credentials are not configured.
type Uploader struct {
	cfg    S3Config
	client s3Client
	logger *slog.Logger
}

func NewUploader(cfg S3Config, logger *slog.Logger) *Uploader {
	u := &Uploader{cfg: cfg, logger: logger}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		u.client = newS3Client(cfg)
	}
	return u
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether offsite upload is configured.
func (u *Uploader) Enabled() bool {
	return u.client != nil
}

// Upload stores the snapshot document under snapshots/<filename>.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) error {
	if u.client == nil {
		return fmt.Errorf("offsite upload not configured: S3 credentials missing")
	}

	key := "snapshots/" + filename
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}

	u.logger.Info("snapshot uploaded", "key", key, "bytes", len(data))
	return nil
}
