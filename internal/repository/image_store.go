package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/storage"
)

// DefaultImagesKey is the storage key the saved collection is kept under.
const DefaultImagesKey = "@MyGallery:images"

// ImageStore persists the saved-images collection.
type ImageStore interface {
	GetSavedImages(ctx context.Context) ([]domain.Image, error)
	SaveImage(ctx context.Context, img domain.Image) error
	DeleteImage(ctx context.Context, id string) error
	ClearAllImages(ctx context.Context) error
}

// FileRemover deletes cached image files. Implemented by the file caches.
type FileRemover interface {
	DeleteLocalFile(ctx context.Context, path string) error
}

// KVImageStore keeps the whole collection as one JSON array under a single
// key. Calls on one instance are serialized; the read-modify-write is not
// atomic across processes sharing the same backing store.
type KVImageStore struct {
	kv    storage.KeyValueStore
	files FileRemover
	key   string
	mu    sync.Mutex
}

// NewKVImageStore creates a KVImageStore.
// Parameters:
//   - kv: backing key-value store.
//   - files: cache used to remove local copies on delete and clear.
//   - key: storage key; empty uses DefaultImagesKey.
// Returns:
//   - *KVImageStore: store instance.
func NewKVImageStore(kv storage.KeyValueStore, files FileRemover, key string) *KVImageStore {
	if key == "" {
		key = DefaultImagesKey
	}
	return &KVImageStore{kv: kv, files: files, key: key}
}

// GetSavedImages returns the collection in insertion order.
// A missing key yields an empty, non-nil slice.
func (s *KVImageStore) GetSavedImages(ctx context.Context) ([]domain.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// SaveImage upserts img by id. An existing record is replaced in place,
// a new one is appended.
func (s *KVImageStore) SaveImage(ctx context.Context, img domain.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := s.read(ctx)
	if err != nil {
		return err
	}

	img = img.WithoutDerived()
	replaced := false
	for i := range images {
		if images[i].ID == img.ID {
			images[i] = img
			replaced = true
			break
		}
	}
	if !replaced {
		images = append(images, img)
	}

	return s.write(ctx, images)
}

// DeleteImage removes the record with id and its cached file.
// Failing to delete the file is logged and does not fail the call.
func (s *KVImageStore) DeleteImage(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewInvalidArgument("id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := s.read(ctx)
	if err != nil {
		return err
	}

	kept := make([]domain.Image, 0, len(images))
	for _, img := range images {
		if img.ID != id {
			kept = append(kept, img)
			continue
		}
		s.removeFile(ctx, img)
	}

	return s.write(ctx, kept)
}

// ClearAllImages deletes every cached file and then removes the key. A
// collection that cannot be read is left untouched.
func (s *KVImageStore) ClearAllImages(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := s.read(ctx)
	if err != nil {
		return err
	}
	for _, img := range images {
		s.removeFile(ctx, img)
	}

	if err := s.kv.Remove(ctx, s.key); err != nil {
		return domain.NewStorageWriteError(s.key, err)
	}
	logger.With(logger.Fields{logger.FieldCount: len(images)}).Info(ctx, "Cleared saved images")
	return nil
}

func (s *KVImageStore) removeFile(ctx context.Context, img domain.Image) {
	if !img.HasLocalCopy() || s.files == nil {
		return
	}
	if err := s.files.DeleteLocalFile(ctx, img.LocalPath); err != nil {
		logger.FromContext(ctx).WithField(logger.FieldImageID, img.ID).
			Warnf("Failed to delete local file %s: %v", img.LocalPath, err)
	}
}

func (s *KVImageStore) read(ctx context.Context) ([]domain.Image, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, domain.NewStorageReadError(s.key, err)
	}
	if !found || raw == "" {
		return []domain.Image{}, nil
	}

	var images []domain.Image
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, domain.NewStorageReadError(s.key, err)
	}
	if images == nil {
		images = []domain.Image{}
	}
	return images, nil
}

func (s *KVImageStore) write(ctx context.Context, images []domain.Image) error {
	for i := range images {
		images[i] = images[i].WithoutDerived()
	}
	data, err := json.Marshal(images)
	if err != nil {
		return domain.NewStorageWriteError(s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return domain.NewStorageWriteError(s.key, err)
	}
	return nil
}
