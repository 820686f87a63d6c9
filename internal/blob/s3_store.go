package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3API is the part of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures an S3-backed store.
type S3Options struct {
	Bucket string
	Region string
	// Prefix is prepended to every key inside the bucket.
	Prefix string
	// PublicBaseURL overrides the virtual-hosted bucket URL, e.g. a CDN.
	PublicBaseURL string
}

// s3Store implements Store on AWS S3.
type s3Store struct {
	client  s3API
	bucket  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates a Store backed by S3 using the default AWS credential chain.
func NewS3Store(ctx context.Context, opts S3Options, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-blob-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Msg("S3 blob store initialised")

	return newS3Store(s3.NewFromConfig(cfg), opts, logger), nil
}

func newS3Store(client s3API, opts S3Options, logger zerolog.Logger) *s3Store {
	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return &s3Store{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  opts.Prefix,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Upload puts the object under a fresh key.
func (s *s3Store) Upload(ctx context.Context, name, mimeType string, data []byte) (Object, error) {
	key := NewKey(name)
	objectKey := s.prefix + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("blob_key", objectKey).
			Msg("failed to put object to S3")
		return Object{}, fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	s.logger.Debug().Str("blob_key", objectKey).Int("bytes", len(data)).Msg("object uploaded")

	return Object{Key: key, URL: joinURL(s.baseURL, objectKey)}, nil
}

// Delete removes the object. S3 already treats missing keys as deleted;
// NoSuchKey is swallowed for S3-compatible stores that report it.
func (s *s3Store) Delete(ctx context.Context, key string) error {
	objectKey := s.prefix + key

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("blob_key", objectKey).
			Msg("failed to delete object from S3")
		return fmt.Errorf("failed to delete object from S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	s.logger.Debug().Str("blob_key", objectKey).Msg("object deleted")
	return nil
}
