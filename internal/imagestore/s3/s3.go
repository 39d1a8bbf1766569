package s3

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/codedits/bitecheck/internal/imagestore"
)

// Config holds the settings for the S3-compatible image bucket.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// Store implements imagestore.Store on an S3-compatible bucket.
type Store struct {
	client *awss3.Client
	bucket string
	public string
	logger *slog.Logger
}

// New builds an S3 client from static credentials and returns a Store. A
// non-empty endpoint targets S3-compatible providers such as R2 or MinIO.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		public: cfg.PublicBaseURL,
		logger: logger,
	}, nil
}

// Upload stores an image under the given key.
func (s *Store) Upload(ctx context.Context, input *imagestore.UploadInput) (*imagestore.UploadResult, error) {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(input.Key),
		Body:          input.Data,
		ContentType:   aws.String(input.ContentType),
		ContentLength: aws.Int64(input.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", input.Key, err)
	}

	return &imagestore.UploadResult{
		Key: input.Key,
		URL: fmt.Sprintf("%s/upload/%s", s.public, input.Key),
	}, nil
}

// Delete removes an image by its key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}

	return nil
}

// DeleteMany removes the given keys, logging and collecting failures instead
// of stopping on the first one.
func (s *Store) DeleteMany(ctx context.Context, keys []string) []string {
	var failed []string

	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to delete image",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			failed = append(failed, key)
		}
	}

	return failed
}
