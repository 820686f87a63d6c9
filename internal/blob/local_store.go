package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalStore implements Store on the local file system. Files are served
// by Handler under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStore creates a file system store rooted at dir.
func NewLocalStore(dir, baseURL string, logger zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
	}

	return &LocalStore{
		dir:     dir,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "local-blob-store").Logger(),
	}, nil
}

// Upload writes the object through a temp file and renames it into place.
func (s *LocalStore) Upload(ctx context.Context, name, mimeType string, data []byte) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	key := NewKey(name)
	path := filepath.Join(s.dir, key)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Object{}, fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to close object %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		s.logger.Error().Err(err).Str("blob_key", key).Msg("failed to store object")
		return Object{}, fmt.Errorf("failed to store object %s: %w", key, err)
	}

	s.logger.Debug().Str("blob_key", key).Str("mime_type", mimeType).Int("bytes", len(data)).Msg("object stored")

	return Object{Key: key, URL: joinURL(s.baseURL, key)}, nil
}

// Delete removes the file. A missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if key != filepath.Base(key) {
		return fmt.Errorf("invalid blob key %q", key)
	}

	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error().Err(err).Str("blob_key", key).Msg("failed to delete object")
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

// Handler serves stored objects by key.
func (s *LocalStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}
