// Package storage stores portfolio photos and their thumbnails.
//
// Implementations:
// - LocalStorage: filesystem storage for development
// - R2Storage: Cloudflare R2 (S3-compatible) storage for production
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Storage defines the object operations the portfolio needs.
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at key. Returns ErrTooLarge when opts.MaxSize is set
	// and exceeded.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get returns the object at key. The caller must close the reader.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for the object. expires is used for presigned URLs
	// and ignored by providers that serve objects publicly.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. Detected from the key when empty.
	ContentType string

	// MaxSize is the maximum allowed size in bytes. 0 means no limit.
	MaxSize int64

	// Public marks the object publicly readable where the provider supports it.
	Public bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// Config selects and configures a provider.
type Config struct {
	Provider string // ProviderLocal or ProviderR2
	Local    LocalConfig
	R2       R2Config
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored.
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	// Example: "http://localhost:8080/files"
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public URL (custom domain). When empty,
	// presigned URLs are used for all access.
	PublicURL string

	// Region defaults to "auto".
	Region string
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// New builds the configured provider.
func New(cfg Config, logger *slog.Logger) (Storage, error) {
	switch cfg.Provider {
	case ProviderLocal:
		return NewLocalStorage(cfg.Local, logger)
	case ProviderR2:
		return NewR2Storage(cfg.R2, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// PhotoKey is the key of a portfolio photo.
// Format: professionals/{professionalID}/portfolio/{photoID}{ext}
func PhotoKey(professionalID, photoID uuid.UUID, contentType string) string {
	return fmt.Sprintf("professionals/%s/portfolio/%s%s", professionalID, photoID, ExtensionForContentType(contentType))
}

// PhotoThumbnailKey is the key of a portfolio photo's thumbnail.
// Thumbnails are always JPEG.
// Format: professionals/{professionalID}/thumbnails/{photoID}.jpg
func PhotoThumbnailKey(professionalID, photoID uuid.UUID) string {
	return fmt.Sprintf("professionals/%s/thumbnails/%s.jpg", professionalID, photoID)
}
