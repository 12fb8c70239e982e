package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps uploads on the local filesystem.
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates dir if needed and serves its files under prefix.
func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	prefix = "/" + strings.Trim(prefix, "/")
	return &LocalStore{dir: dir, prefix: prefix}, nil
}

// Dir returns the root directory, for mounting a static handler.
func (s *LocalStore) Dir() string { return s.dir }

// Prefix returns the public URL prefix.
func (s *LocalStore) Prefix() string { return s.prefix }

// Put writes body to a temporary file and renames it into place.
func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return s.prefix + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, publicPath string) error {
	key, err := keyFromPath(s.prefix, publicPath)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) Owns(publicPath string) bool {
	_, err := keyFromPath(s.prefix, publicPath)
	return err == nil
}
