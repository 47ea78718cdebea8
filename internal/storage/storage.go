// Package storage stages file bytes in blob storage for the lifetime of a session.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/config"
	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

var (
	ErrNotFound           = errors.New("object not found")
	ErrPresignUnsupported = errors.New("presigned uploads are not supported by this backend")
)

type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// PresignPut returns a URL the client can PUT the object to directly.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
}

// New builds the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMinIO:
		return NewS3Storage(ctx, cfg)
	case config.StorageGCS:
		return NewGCSStorage(ctx, cfg)
	case config.StorageMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// UploadScope holds objects clients PUT directly through presigned URLs.
const UploadScope = "uploads"

// IsUploadKey reports whether key names a client-staged upload. Requests may only
// reference those; session objects stay private to their session.
func IsUploadKey(key string) bool {
	return strings.HasPrefix(key, UploadScope+"/") && !strings.Contains(key, "..")
}

// ObjectKey returns a unique key under scope for a file called name.
func ObjectKey(scope, name string) string {
	base := filename.Sanitize(name)
	if base == "" {
		base = "file"
	}
	return path.Join(scope, utils.GenerateID(), base)
}
