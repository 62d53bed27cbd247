// Package storage contains blob storage abstractions. Blobs live in a flat
// namespace keyed by "{generated-id}{extension}".
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bizprofile/internal/config"
)

var (
	// ErrObjectNotFound is returned when no blob exists under a key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that would escape the flat namespace.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a blob store. Implementations are safe for concurrent use.
type Storage interface {
	// Put writes a blob under key. Writes are not atomic.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens a blob for streaming. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns blob info or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes a blob or returns ErrObjectNotFound.
	Delete(ctx context.Context, key string) error
}

// Probe locates the blob stored for id by trying each extension in order and
// returns the first key that exists. At most one match is expected.
func Probe(ctx context.Context, s Storage, id string, exts []string) (string, error) {
	for _, ext := range exts {
		key := id + ext
		_, err := s.Stat(ctx, key)
		if err == nil {
			return key, nil
		}
		if errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrInvalidKey) {
			continue
		}
		return "", err
	}
	return "", ErrObjectNotFound
}

// New builds the Storage selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir)
	case "minio":
		return NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
