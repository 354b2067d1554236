package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage holds generated IR/NTE PDFs, roster exports and document images.
// Keys are slash separated and relative to the storage root, e.g. "nte/2026/10/12.pdf".
type FileStorage interface {
	// Upload writes the object and returns its cleaned key.
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// GetURL returns a link served by GET /files/*. Local storage ignores expiry.
	GetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}
