// Package blob abstracts object storage behind a small interface with an
// S3 implementation for real deployments (or LocalStack) and an in-memory
// implementation for tests. Keys are tenant-namespaced by callers.
package blob

import (
	"context"
	"io"
	"time"
)

// Metadata describes a stored object.
type Metadata struct {
	Key            string    `json:"key"`
	Size           int64     `json:"size"`
	ContentType    string    `json:"content_type,omitempty"`
	ChecksumSHA256 string    `json:"checksum_sha256,omitempty"`
	ETag           string    `json:"etag,omitempty"`
	LastModified   time.Time `json:"last_modified"`
}

// Store is the object storage contract. A missing key yields a not-found
// domain error from Get, Head, and Delete.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Metadata, error)
	Get(ctx context.Context, key string) (io.ReadCloser, Metadata, error)
	Head(ctx context.Context, key string) (Metadata, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Metadata, error)
}
