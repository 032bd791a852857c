package filecache

import (
	"context"
	"fmt"

	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/storage"
)

// New builds the FileCache selected by cfg.Backend. Object backends get
// their bucket created when missing.
func New(ctx context.Context, cfg config.CacheConfig) (FileCache, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalCache(cfg.Dir, cfg.Timeout), nil
	case "s3", "minio":
		store, err := storage.NewObjectStorage(cfg.Backend, cfg.Object)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare bucket: %w", err)
		}
		return NewObjectCache(store, cfg.Object.Prefix, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
