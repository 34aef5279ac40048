package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectAPI is the subset of the S3 client used by the store.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Store keeps files in an S3 bucket. Paths have the form
// s3://<bucket>/<prefix><dir>/<name>.
type s3Store struct {
	client objectAPI
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed store using the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 upload store initialised")

	return newS3Store(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Store(client objectAPI, bucket, prefix string, logger zerolog.Logger) *s3Store {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (s *s3Store) url(key string) string {
	return "s3://" + s.bucket + "/" + key
}

// Save uploads the file and returns its s3:// path.
func (s *s3Store) Save(ctx context.Context, dir, originalName, contentType string, r io.Reader) (string, error) {
	key := s.prefix + cleanDir(dir) + "/" + uniqueName(originalName, contentType)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Debug().Str("key", key).Msg("upload stored in S3")
	return s.url(key), nil
}

// Delete removes an object previously returned by Save.
func (s *s3Store) Delete(ctx context.Context, path string) error {
	key, ok := strings.CutPrefix(path, "s3://"+s.bucket+"/")
	if !ok || key == "" {
		return fmt.Errorf("path %q is outside bucket %s", path, s.bucket)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to delete object from S3")
		return fmt.Errorf("failed to delete object from S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}
	return nil
}
