package service

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/filecache"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/repository"
)

// contextLogger returns the request logger if one is attached, otherwise fallback.
func contextLogger(ctx context.Context, fallback *logger.Logger) *logger.Logger {
	if l := logger.FromContext(ctx); l != logger.GetDefault() || fallback == nil {
		return l
	}
	return fallback
}

// SaveImageUseCase saves an image together with a local copy of its bytes.
type SaveImageUseCase struct {
	store  repository.ImageStore
	cache  filecache.FileCache
	logger *logger.Logger
}

// NewSaveImageUseCase creates a SaveImageUseCase.
func NewSaveImageUseCase(store repository.ImageStore, cache filecache.FileCache, log *logger.Logger) *SaveImageUseCase {
	return &SaveImageUseCase{store: store, cache: cache, logger: log}
}

// Execute validates img, resolves a local copy and persists the record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - img: image to save; an existing LocalPath is kept as is.
// Returns:
//   - domain.Image: the record that was persisted (enriched or degraded).
//   - error: invalid argument before any I/O; *domain.DownloadFailedError
//     when the record was saved without a local copy; a storage error
//     when nothing could be persisted.
func (uc *SaveImageUseCase) Execute(ctx context.Context, img domain.Image) (domain.Image, error) {
	if err := img.Validate(); err != nil {
		return domain.Image{}, err
	}
	img = img.WithoutDerived()
	log := contextLogger(ctx, uc.logger).WithField(logger.FieldImageID, img.ID)
	start := time.Now()

	localPath, dlErr := uc.resolveLocalCopy(ctx, img, log)
	if dlErr != nil {
		degraded := img
		degraded.LocalPath = ""
		log.WithError(dlErr).Warn("Local copy failed, saving with remote URL only")

		if err := uc.store.SaveImage(ctx, degraded); err != nil {
			return domain.Image{}, errors.Join(dlErr, err)
		}
		return degraded, dlErr
	}

	img.LocalPath = localPath
	if err := uc.store.SaveImage(ctx, img); err != nil {
		return domain.Image{}, err
	}

	log.WithFields(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Infof("Saved image (local: %s)", localPath)
	return img, nil
}

// resolveLocalCopy returns the existing local path, a cached copy, or a
// fresh download, in that order.
func (uc *SaveImageUseCase) resolveLocalCopy(ctx context.Context, img domain.Image, log *logger.Logger) (string, error) {
	if img.HasLocalCopy() {
		return img.LocalPath, nil
	}

	path, found, err := uc.cache.GetLocalPath(ctx, img.ID)
	if err != nil {
		log.WithError(err).Warn("Cache lookup failed, downloading")
	} else if found {
		return path, nil
	}

	log.Debugf("Downloading image from %s", img.URL)
	path, err = uc.cache.DownloadAndSave(ctx, img)
	if err != nil {
		var dfe *domain.DownloadFailedError
		if !errors.As(err, &dfe) {
			err = &domain.DownloadFailedError{ImageID: img.ID, Err: err}
		}
		return "", err
	}
	return path, nil
}

// DeleteImageUseCase removes a saved image and its local copy.
type DeleteImageUseCase struct {
	store repository.ImageStore
}

// NewDeleteImageUseCase creates a DeleteImageUseCase.
func NewDeleteImageUseCase(store repository.ImageStore) *DeleteImageUseCase {
	return &DeleteImageUseCase{store: store}
}

// Execute deletes the image with id. An empty id is rejected without I/O.
func (uc *DeleteImageUseCase) Execute(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewInvalidArgument("id")
	}
	return uc.store.DeleteImage(ctx, id)
}

// ListSavedImagesUseCase returns the saved collection.
type ListSavedImagesUseCase struct {
	store repository.ImageStore
}

func NewListSavedImagesUseCase(store repository.ImageStore) *ListSavedImagesUseCase {
	return &ListSavedImagesUseCase{store: store}
}

func (uc *ListSavedImagesUseCase) Execute(ctx context.Context) ([]domain.Image, error) {
	return uc.store.GetSavedImages(ctx)
}

// ClearAllImagesUseCase empties the saved collection.
type ClearAllImagesUseCase struct {
	store repository.ImageStore
}

func NewClearAllImagesUseCase(store repository.ImageStore) *ClearAllImagesUseCase {
	return &ClearAllImagesUseCase{store: store}
}

func (uc *ClearAllImagesUseCase) Execute(ctx context.Context) error {
	return uc.store.ClearAllImages(ctx)
}
