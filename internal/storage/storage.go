package storage

import (
	"context"
	"io"
	"time"
)

// Package storage holds the CV archive: every successfully analyzed CV is
// kept in an S3-compatible object store so the result page can offer the
// original file back. Implementations stream only; no local disk.

// PutOptions define optional parameters for archiving a CV.
// Size should be the exact number of bytes if known; -1 lets the backend
// buffer/chunk as it supports.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an archived CV.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Archive is the CV archive client interface. Downloads go through presigned
// URLs rather than streaming back through the app.
type Archive interface {
	// Put stores a CV under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Delete removes an archived CV by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL for downloading the CV without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
