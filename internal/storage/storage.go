package storage

import (
	"context"
	"io"
)

// ObjectStorage stores product media.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the address clients use to fetch key.
	URL(key string) string
}
