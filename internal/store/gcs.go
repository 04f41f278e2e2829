package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

// GCS stores files as objects in a Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates a storage client for bucket. Objects are written under prefix.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewGCS: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCS: creating storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close closes the storage client.
func (g *GCS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// ObjectName returns the object path used for name.
func (g *GCS) ObjectName(name string) string {
	if g.prefix == "" {
		return name
	}
	return path.Join(g.prefix, name)
}

// Save uploads r to the bucket.
func (g *GCS) Save(ctx context.Context, name string, r io.Reader) error {
	if !ValidName(name) {
		return fmt.Errorf("Save: %q: %w", name, ErrInvalidName)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(g.ObjectName(name)).NewWriter(ctx)
	w.ContentType = "application/pdf"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("Save: copying to gs://%s/%s: %w: %w", g.bucket, g.ObjectName(name), ErrStorage, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Save: finalizing gs://%s/%s: %w: %w", g.bucket, g.ObjectName(name), ErrStorage, err)
	}
	return nil
}

// Open returns a reader for the object.
func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("Open: %q: %w", name, ErrNotFound)
	}

	rc, err := g.client.Bucket(g.bucket).Object(g.ObjectName(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("Open: %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("Open: reading gs://%s/%s: %w: %w", g.bucket, g.ObjectName(name), ErrStorage, err)
	}
	return rc, nil
}

var _ Store = (*GCS)(nil)
