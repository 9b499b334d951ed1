// Package storage is the object store behind plant images.
//
// Two drivers are available:
//   - "local": files under a root directory, served by the app at STORAGE_URL
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Boot once, then resolve the default disk:
//
//	m, err := storage.Connect(ctx, storage.ConfigFromEnv())
//	disk := m.Default()
//	err = disk.Put(ctx, "plants/1f0c….png", r, "image/png")
//	url := disk.URL("plants/1f0c….png")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Open for a missing object.
var ErrNotExist = errors.New("storage: object does not exist")

// Disk is implemented by every driver.
type Disk interface {
	// Put writes r to path. contentType may be empty.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Open returns the object's content. Caller must close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	Exists(ctx context.Context, path string) bool

	// Delete removes path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error

	// URL is the public URL for path.
	URL(path string) string
}
