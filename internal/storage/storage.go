// Package storage is the object-storage side of the remote data service.
package storage

import (
	"context"
	"io"
)

// Bucket stores binary objects under slash-separated paths.
type Bucket interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	// PublicURL is a stable unauthenticated link; it does not check existence.
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}
