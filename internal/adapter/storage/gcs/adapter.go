// Package gcs provides a Google Cloud Storage implementation of the storage
// adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
	storageConfig "github.com/nyuad-access/fidas-uplink/internal/adapter/storage/config"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// ProviderType defines the type identifier for this GCS storage provider.
const ProviderType = "gcs"

// gcsAdapter implements storage.StorageConnection over a GCS client.
type gcsAdapter struct {
	client *gcstorage.Client
	cfg    storageConfig.StorageConfig
	name   string
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter creates a new gcsAdapter instance. When CredentialsFile is
// empty the client falls back to Application Default Credentials.
func NewGCSAdapter(ctx context.Context, cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}

	return &gcsAdapter{
		client: client,
		cfg:    cfg,
		name:   name,
	}, nil
}

// Close closes the underlying GCS client.
func (a *gcsAdapter) Close() error {
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return a.client.Close()
}

func (a *gcsAdapter) Type() string {
	return ProviderType
}

func (a *gcsAdapter) Name() string {
	return a.name
}

// bucketName applies the configured default bucket when none is specified.
func (a *gcsAdapter) bucketName(bucket string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	if bucket == "" {
		return "", fmt.Errorf("gcs storage adapter '%s': bucket name is required", a.name)
	}
	return bucket, nil
}

// Upload writes data to the specified bucket and object.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	bucket, err := a.bucketName(bucket)
	if err != nil {
		return err
	}

	w := a.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	logger.Debugf("Uploaded data to 'gs://%s/%s' (gcs adapter '%s').", bucket, objectName, a.name)
	return nil
}

// Download opens a reader on the specified object. The returned
// io.ReadCloser must be closed by the caller.
func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	bucket, err := a.bucketName(bucket)
	if err != nil {
		return nil, err
	}

	r, err := a.client.Bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	return r, nil
}

// ListObjects iterates the bucket under prefix and calls fn per object name.
func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	bucket, err := a.bucketName(bucket)
	if err != nil {
		return err
	}

	it := a.client.Bucket(bucket).Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list objects in 'gs://%s' with prefix '%s': %w", bucket, prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
	return nil
}

// DeleteObject removes the specified object. A missing object is logged and
// ignored.
func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	bucket, err := a.bucketName(bucket)
	if err != nil {
		return err
	}

	if err := a.client.Bucket(bucket).Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			logger.Warnf("Attempted to delete non-existent object 'gs://%s/%s' (gcs adapter '%s').", bucket, objectName, a.name)
			return nil
		}
		return fmt.Errorf("failed to delete object 'gs://%s/%s': %w", bucket, objectName, err)
	}
	logger.Debugf("Deleted object 'gs://%s/%s' (gcs adapter '%s').", bucket, objectName, a.name)
	return nil
}

// GCSProvider implements storage.StorageProvider for GCS connections.
type GCSProvider struct {
	cfg         *config.Config
	connections map[string]storageAdapter.StorageConnection
	mu          sync.RWMutex
}

// NewGCSProvider creates a new GCSProvider instance.
func NewGCSProvider(cfg *config.Config) storageAdapter.StorageProvider {
	return &GCSProvider{
		cfg:         cfg,
		connections: make(map[string]storageAdapter.StorageConnection),
	}
}

// GetConnection retrieves a StorageConnection by name, creating it on first
// use.
func (p *GCSProvider) GetConnection(name string) (storageAdapter.StorageConnection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring lock
	conn, ok = p.connections[name]
	if ok {
		return conn, nil
	}

	storageCfg, err := storageAdapter.DecodeStorageConfig(p.cfg, name)
	if err != nil {
		return nil, err
	}
	if storageCfg.Type != ProviderType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, ProviderType, storageCfg.Type)
	}

	newConn, err := NewGCSAdapter(context.Background(), storageCfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs adapter for '%s': %w", name, err)
	}

	p.connections[name] = newConn
	logger.Debugf("Created new GCS storage connection '%s'.", name)
	return newConn, nil
}

// CloseAll closes all connections managed by this provider.
func (p *GCSProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close GCS storage connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing GCS storage connections: %v", errs)
	}
	return nil
}

// Type returns "gcs".
func (p *GCSProvider) Type() string {
	return ProviderType
}
