package filecache

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/storage"
)

// ObjectCache keeps image files in an object storage bucket. The "local
// path" it hands out is the object key.
type ObjectCache struct {
	store  storage.ObjectStorage
	prefix string
	client *resty.Client
}

// NewObjectCache creates an ObjectCache writing keys under prefix.
func NewObjectCache(store storage.ObjectStorage, prefix string, timeout time.Duration) *ObjectCache {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "images"
	}
	return &ObjectCache{store: store, prefix: prefix, client: newDownloader(timeout)}
}

func (c *ObjectCache) key(id, ext string) string {
	return path.Join(c.prefix, id+ext)
}

// URL returns the public URL of a stored key.
func (c *ObjectCache) URL(key string) string {
	return c.store.GetURL(key)
}

// DownloadAndSave downloads img and uploads it as {prefix}/{id}{ext}.
func (c *ObjectCache) DownloadAndSave(ctx context.Context, img domain.Image) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}

	data, contentType, err := fetch(ctx, c.client, img)
	if err != nil {
		return "", err
	}

	ext := chooseExtension(img.URL, data)
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = contentTypeFor(ext)
	}

	key := c.key(img.ID, ext)
	if err := c.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", &domain.DownloadFailedError{ImageID: img.ID, Err: err}
	}

	logger.With(logger.Fields{
		logger.FieldImageID: img.ID,
		logger.FieldSize:    len(data),
	}).Debug(ctx, "Uploaded image to %s", key)

	return key, nil
}

// GetLocalPath checks each known extension for id.
func (c *ObjectCache) GetLocalPath(ctx context.Context, id string) (string, bool, error) {
	for _, ext := range knownExtensions {
		key := c.key(id, ext)
		exists, err := c.store.Exists(ctx, key)
		if err != nil {
			return "", false, err
		}
		if exists {
			return key, true, nil
		}
	}
	return "", false, nil
}

// DeleteLocalFile removes the object at key.
func (c *ObjectCache) DeleteLocalFile(ctx context.Context, key string) error {
	if !strings.HasPrefix(path.Clean(key), c.prefix+"/") {
		return fmt.Errorf("refusing to delete %s: outside prefix %s", key, c.prefix)
	}
	exists, err := c.store.Exists(ctx, key)
	if err != nil || !exists {
		return err
	}
	return c.store.Delete(ctx, key)
}

// ClearAll removes every object under the prefix.
func (c *ObjectCache) ClearAll(ctx context.Context) error {
	keys, err := c.store.List(ctx, c.prefix+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	logger.With(logger.Fields{logger.FieldCount: len(keys)}).Info(ctx, "Cleared object cache")
	return nil
}
