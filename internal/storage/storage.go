// Package storage persists uploaded files and maps them to public paths.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"pulse/internal/config"
)

// ErrForeignPath is returned when a path does not belong to the store.
var ErrForeignPath = errors.New("path is not managed by this store")

// Store writes objects under a key and serves them at a public path.
type Store interface {
	// Put stores body under key and returns its public path.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object behind a public path returned by Put.
	// Deleting a missing object is not an error.
	Delete(ctx context.Context, publicPath string) error
	// Owns reports whether publicPath lies under the store's public prefix.
	Owns(publicPath string) bool
}

// New builds the store selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	case "s3":
		return NewS3Store(S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}

// keyFromPath strips prefix from publicPath and returns the object key.
func keyFromPath(prefix, publicPath string) (string, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(publicPath, prefix+"/") {
		return "", ErrForeignPath
	}
	return cleanKey(strings.TrimPrefix(publicPath, prefix+"/"))
}
