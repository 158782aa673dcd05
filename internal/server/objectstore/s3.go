package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rcabrera/citywatch/internal/common"
	"github.com/sethvargo/go-retry"
)

// S3Config holds the settings for an S3-compatible backend (MinIO in
// development).
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
	// Timeout bounds each upload attempt, retries included.
	Timeout time.Duration
}

type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.RootUser,
			cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.BaseEndpoint, "/") + "/" + cfg.Bucket,
		timeout: cfg.Timeout,
	}, nil
}

func storageKey(folder string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%v", folder, d.Year(), int(d.Month()), uuid.New())
}

// Upload puts the blob under a date-partitioned random key and returns its
// public URL. Transient failures are retried with exponential backoff; the
// overall attempt is bounded by the configured timeout.
func (s *S3Store) Upload(ctx context.Context, folder, contentType string, data []byte) (string, error) {
	key := storageKey(folder)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpload, err)
	}

	return s.baseURL + "/" + key, nil
}
