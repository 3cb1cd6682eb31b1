package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"vnfurniture/internal/logger"
)

// MinIO is a Bucket backed by one MinIO (or S3-compatible) bucket.
type MinIO struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIO builds the bucket. publicBase overrides the URL prefix handed to
// browsers; when empty it is derived from the client endpoint.
func NewMinIO(client *minio.Client, bucket, publicBase string) *MinIO {
	if publicBase == "" {
		publicBase = client.EndpointURL().String()
	}
	return &MinIO{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBase, "/"),
	}
}

func (m *MinIO) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", m.bucket, path, err)
	}
	logger.Log.Debug("object uploaded", zap.String("bucket", m.bucket), zap.String("path", path))
	return nil
}

func (m *MinIO) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", m.baseURL, m.bucket, strings.TrimLeft(path, "/"))
}

func (m *MinIO) Remove(ctx context.Context, paths ...string) error {
	objects := make(chan minio.ObjectInfo, len(paths))
	for _, p := range paths {
		objects <- minio.ObjectInfo{Key: p}
	}
	close(objects)

	var firstErr error
	for res := range m.client.RemoveObjects(ctx, m.bucket, objects, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s/%s: %w", m.bucket, res.ObjectName, res.Err)
		}
	}
	return firstErr
}
