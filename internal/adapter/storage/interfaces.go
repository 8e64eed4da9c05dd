// Package storage defines the common interfaces for storage adapters. These
// abstract object storage operations so the pipeline can read raw instrument
// exports and mirror delivered artifacts through a unified API, whether the
// backend is a local directory or a GCS bucket.
package storage

import (
	"context"
	"io"
)

// StorageExecutor defines generic storage operations.
type StorageExecutor interface {
	// Upload uploads data to the specified bucket and object name.
	// 'contentType' is the MIME type of the data.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download downloads data from the specified bucket and object name.
	// It returns a ReadCloser which must be closed by the caller after use.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects lists objects within the specified bucket and prefix. The
	// 'fn' callback is called once per object name, allowing large listings
	// to be processed without loading all names into memory.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes the specified object from the bucket.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection represents one named storage connection.
type StorageConnection interface {
	StorageExecutor

	// Type returns the backend type (e.g. "local", "gcs").
	Type() string
	// Name returns the connection name.
	Name() string
	// Close releases the connection's resources.
	Close() error
}

// StorageProvider manages connections of a single storage type.
type StorageProvider interface {
	// GetConnection retrieves a StorageConnection with the specified name.
	GetConnection(name string) (StorageConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the storage type handled by this provider.
	Type() string
}

// ConnectionResolver resolves a configured storage name to a live connection,
// whatever its backend type.
type ConnectionResolver interface {
	Resolve(name string) (StorageConnection, error)
	CloseAll() error
}
