package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileKV stores each key as one file inside a directory.
// Writes go to a temp file that is renamed over the target, so readers
// never observe a partially written value.
type FileKV struct {
	dir string
}

// NewFileKV creates a FileKV rooted at dir, creating the directory if needed.
// Parameters:
//   - dir: directory holding one file per key.
// Returns:
//   - *FileKV: store bound to dir.
//   - error: non-nil if the directory cannot be created.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

// Get reads the value stored under key.
func (s *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes value under key atomically.
func (s *FileKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.path(key)
	tmp := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to commit key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (s *FileKV) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}
