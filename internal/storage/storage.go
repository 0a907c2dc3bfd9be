package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the blob store abstraction. Backends persist the
// raw bytes of uploaded documents under opaque keys; metadata lives in the
// catalog, not here.

// PutOptions define optional parameters for storing blobs.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage is the blob store interface shared by the filesystem and
// S3-compatible backends. Keys must never be derived from raw caller input;
// callers build them from generated identifiers and sanitized names.
type Storage interface {
	// Put persists the reader's bytes under key and reports the stored size.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Get retrieves a blob's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes a blob by key. A blob that is already absent is not an
	// error; any other I/O failure is surfaced.
	Delete(ctx context.Context, key string) error
}
