// Package artifact provides a filesystem-backed store for sealed blobs.
// Only ciphertext ever reaches this store; the metadata rows in the vault
// store hold the wrapped keys needed to open it.
package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrStoreClosed is returned for operations on a closed store.
var ErrStoreClosed = errors.New("artifact store is closed")

// ErrNotFound is returned when a blob key has no stored artifact.
var ErrNotFound = errors.New("artifact not found")

// Store is a filesystem-backed sealed blob store.
// Blobs are stored as files with the blob key as the path.
type Store struct {
	mu       sync.RWMutex
	basePath string
	fileMode os.FileMode
	closed   bool
}

// Config holds configuration for the filesystem artifact store.
type Config struct {
	// BasePath is the root directory for blob storage.
	// Blob keys are stored as paths relative to this directory.
	BasePath string

	// CreateDir creates the base directory if it doesn't exist.
	// Default: true
	CreateDir bool

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode

	// FileMode is the permission mode for created files.
	// Default: 0600; artifacts are ciphertext but still not world-readable.
	FileMode os.FileMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig(basePath string) Config {
	return Config{
		BasePath:  basePath,
		CreateDir: true,
		DirMode:   0755,
		FileMode:  0600,
	}
}

// New creates a filesystem artifact store with the given configuration.
func New(cfg Config) (*Store, error) {
	if cfg.BasePath == "" {
		return nil, errors.New("base path is required")
	}

	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0600
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(cfg.BasePath, cfg.DirMode); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("base path is not a directory")
	}

	return &Store{
		basePath: cfg.BasePath,
		fileMode: cfg.FileMode,
	}, nil
}

// NewWithPath creates a filesystem artifact store with default configuration.
func NewWithPath(basePath string) (*Store, error) {
	return New(DefaultConfig(basePath))
}

// blobPath returns the full filesystem path for a blob key, refusing keys
// that would escape the base directory.
func (s *Store) blobPath(blobKey string) (string, error) {
	if blobKey == "" || strings.Contains(blobKey, "..") {
		return "", errors.New("invalid blob key")
	}
	return filepath.Join(s.basePath, filepath.FromSlash(blobKey)), nil
}

// Write stores a sealed blob. It writes to a temporary file first, then
// renames for atomicity, so readers never observe a partial blob.
func (s *Store) Write(blobKey string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	path, err := s.blobPath(blobKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, s.fileMode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Read returns a stored blob by key.
func (s *Store) Read(blobKey string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	path, err := s.blobPath(blobKey)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a stored blob. Deleting a missing blob is not an error.
func (s *Store) Delete(blobKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	path, err := s.blobPath(blobKey)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close marks the store closed. Subsequent operations fail with
// ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
