package filecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/logger"
)

const tempPrefix = ".tmp-"

// LocalCache keeps image files in a directory on the local filesystem.
type LocalCache struct {
	dir    string
	client *resty.Client
}

// NewLocalCache creates a LocalCache rooted at dir. The directory is created
// on first download.
func NewLocalCache(dir string, timeout time.Duration) *LocalCache {
	return &LocalCache{dir: dir, client: newDownloader(timeout)}
}

// Dir returns the cache directory.
func (c *LocalCache) Dir() string {
	return c.dir
}

// DownloadAndSave downloads img and writes it to {dir}/{id}{ext}.
// The bytes are written to a temp file and renamed, so a failed download
// never leaves a partial file under the final name.
func (c *LocalCache) DownloadAndSave(ctx context.Context, img domain.Image) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", &domain.DownloadFailedError{ImageID: img.ID, Err: err}
	}

	start := time.Now()
	data, _, err := fetch(ctx, c.client, img)
	if err != nil {
		return "", err
	}

	target := filepath.Join(c.dir, img.ID+chooseExtension(img.URL, data))
	if !c.contains(target) {
		return "", domain.NewInvalidArgument("id")
	}
	tmp := filepath.Join(c.dir, tempPrefix+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.DownloadFailedError{ImageID: img.ID, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.DownloadFailedError{ImageID: img.ID, Err: err}
	}

	logger.With(logger.Fields{
		logger.FieldImageID:    img.ID,
		logger.FieldSize:       len(data),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Downloaded image to %s", target)

	return target, nil
}

// GetLocalPath returns the file stored for id.
func (c *LocalCache) GetLocalPath(ctx context.Context, id string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, tempPrefix) {
			continue
		}
		if matchesID(name, id) {
			return filepath.Join(c.dir, name), true, nil
		}
	}
	return "", false, nil
}

// DeleteLocalFile removes path. Only files inside the cache directory are
// removed.
func (c *LocalCache) DeleteLocalFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.contains(path) {
		return fmt.Errorf("refusing to delete %s: outside cache directory %s", path, c.dir)
	}

	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// ClearAll removes the whole cache directory.
func (c *LocalCache) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("failed to clear cache directory: %w", err)
	}
	return nil
}

func (c *LocalCache) contains(path string) bool {
	dir, err := filepath.Abs(c.dir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	return err == nil && rel != "." && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
