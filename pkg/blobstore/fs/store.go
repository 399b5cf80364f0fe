// Package fs provides a filesystem implementation of the blob store.
//
// Blobs live as plain files under a root directory, with the blob path mapped
// directly onto the directory tree. It is the default backend and is suitable
// for local development and single-node deployments.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evermem/evermem-go/pkg/blobstore"
)

// Store implements blobstore.Store on the local filesystem.
type Store struct {
	root string
}

// Config contains configuration for creating a filesystem Store.
type Config struct {
	// Root is the directory under which all blobs are stored.
	Root string
}

// NewStore creates a filesystem-backed blob store rooted at cfg.Root.
//
// The root directory is created if it does not exist.
func NewStore(cfg *Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("fs store: root directory is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("fs store: create root: %w", err)
	}
	return &Store{root: cfg.Root}, nil
}

// resolve maps a blob path onto the filesystem, rejecting escapes from root.
func (s *Store) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("fs store: invalid blob path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

// Get returns the blob stored at path, or blobstore.ErrNotFound if absent.
func (s *Store) Get(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fs store: get %s: %w", path, err)
	}
	return data, nil
}

// Put stores data at path, creating parent directories as needed.
func (s *Store) Put(_ context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("fs store: put %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("fs store: put %s: %w", path, err)
	}
	return nil
}

// List returns the paths of all blobs under prefix in lexicographic order.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		blobPath := filepath.ToSlash(rel)
		if strings.HasPrefix(blobPath, prefix) {
			paths = append(paths, blobPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs store: list %s: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether a blob exists at path.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fs store: exists %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// Delete removes the blob at path. Absent paths are ignored.
func (s *Store) Delete(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs store: delete %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every blob under prefix.
func (s *Store) DeleteAll(ctx context.Context, prefix string) error {
	paths, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := s.Delete(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close() error {
	return nil
}
