// Package blob stores image objects and hands out their public URLs.
package blob

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Object identifies a stored blob. Key is what Delete expects.
type Object struct {
	Key string
	URL string
}

// Store uploads and deletes named binary objects.
type Store interface {
	// Upload stores data under a fresh key derived from name.
	Upload(ctx context.Context, name, mimeType string, data []byte) (Object, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey returns "<uuid>-<name>" with name reduced to URL-safe characters.
func NewKey(name string) string {
	return uuid.NewString() + "-" + sanitize(name)
}

func sanitize(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if clean == "" {
		return "object"
	}
	return clean
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
