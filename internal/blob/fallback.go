package blob

import (
	"context"

	"github.com/rs/zerolog"
)

// s3Factory builds the S3 store; replaced in tests.
var s3Factory = NewS3Store

// Open returns the S3 store when it is enabled and can be built, and the
// local store otherwise.
func Open(ctx context.Context, s3Enabled bool, opts S3Options, local *LocalStore, logger zerolog.Logger) Store {
	logger = logger.With().Str("component", "blob-store").Logger()

	if !s3Enabled {
		logger.Info().Str("dir", local.dir).Msg("S3 disabled, using local blob store")
		return local
	}

	store, err := s3Factory(ctx, opts, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("bucket", opts.Bucket).
			Msg("failed to initialise S3 blob store, falling back to local file system")
		return local
	}

	return store
}
