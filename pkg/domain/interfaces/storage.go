package interfaces

import (
	"context"
	"io"
)

// BlobStorage stores files in logical buckets and serves them by public URL
type BlobStorage interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error
	// Remove deletes the objects. Missing objects are ignored.
	Remove(ctx context.Context, bucket string, paths ...string) error
	// List returns object paths under prefix
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	PublicURL(bucket, path string) string
}
