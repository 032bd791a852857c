package state

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/service"
)

// Saver saves one image and returns the persisted record.
type Saver interface {
	Execute(ctx context.Context, img domain.Image) (domain.Image, error)
}

// Deleter deletes a saved image by id.
type Deleter interface {
	Execute(ctx context.Context, id string) error
}

// Lister lists the saved collection.
type Lister interface {
	Execute(ctx context.Context) ([]domain.Image, error)
}

// Clearer empties the saved collection.
type Clearer interface {
	Execute(ctx context.Context) error
}

// Catalog reads the remote catalog.
type Catalog interface {
	FetchRandomImage(ctx context.Context) (domain.Image, error)
	FetchAndSaveRandomImage(ctx context.Context) (domain.Image, error)
	FetchGalleryPage(ctx context.Context, page int) (service.GalleryPage, error)
}

// Deps are the collaborators effects run against.
type Deps struct {
	Save    Saver
	Delete  Deleter
	List    Lister
	Clear   Clearer
	Catalog Catalog
}

// Effects run use cases and dispatch their requested, succeeded and
// failed phases to a Store. Concurrent calls are not coalesced.
type Effects struct {
	store *Store
	deps  Deps
}

// NewEffects binds deps to store.
func NewEffects(store *Store, deps Deps) *Effects {
	return &Effects{store: store, deps: deps}
}

// Store returns the bound store.
func (e *Effects) Store() *Store {
	return e.store
}

func (e *Effects) logFailure(ctx context.Context, op Operation, start time.Time, err error) {
	logger.With(logger.Fields{
		logger.FieldOperation:  string(op),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Warn(ctx, "Operation failed: %v", err)
}

// LoadSavedImages replaces the saved collection with the persisted one.
func (e *Effects) LoadSavedImages(ctx context.Context) error {
	start := time.Now()
	e.store.Dispatch(LoadSavedRequested{})

	images, err := e.deps.List.Execute(ctx)
	if err != nil {
		e.logFailure(ctx, OpSaved, start, err)
		e.store.Dispatch(LoadSavedFailed{Err: err})
		return err
	}
	e.store.Dispatch(LoadSavedSucceeded{Images: images})
	return nil
}

// SaveImage saves img. When only the download failed, the degraded record
// is still added to the saved collection and the error is returned.
func (e *Effects) SaveImage(ctx context.Context, img domain.Image) (domain.Image, error) {
	start := time.Now()
	e.store.Dispatch(SaveRequested{ImageID: img.ID})

	saved, err := e.deps.Save.Execute(ctx, img)
	if err != nil {
		e.logFailure(ctx, OpSave, start, err)
		e.store.Dispatch(SaveFailed{ImageID: img.ID, Degraded: degradedRecord(saved, err), Err: err})
		return saved, err
	}
	e.store.Dispatch(SaveSucceeded{Image: saved})
	return saved, nil
}

// DeleteImage deletes the saved image with id.
func (e *Effects) DeleteImage(ctx context.Context, id string) error {
	start := time.Now()
	e.store.Dispatch(DeleteRequested{ImageID: id})

	if err := e.deps.Delete.Execute(ctx, id); err != nil {
		e.logFailure(ctx, OpDelete, start, err)
		e.store.Dispatch(DeleteFailed{ImageID: id, Err: err})
		return err
	}
	e.store.Dispatch(DeleteSucceeded{ImageID: id})
	return nil
}

// ClearAllImages empties the saved collection.
func (e *Effects) ClearAllImages(ctx context.Context) error {
	start := time.Now()
	e.store.Dispatch(ClearAllRequested{})

	if err := e.deps.Clear.Execute(ctx); err != nil {
		e.logFailure(ctx, OpClearAll, start, err)
		e.store.Dispatch(ClearAllFailed{Err: err})
		return err
	}
	e.store.Dispatch(ClearAllSucceeded{})
	return nil
}

// FetchRandomImage replaces the random image and records it in history.
func (e *Effects) FetchRandomImage(ctx context.Context) (domain.Image, error) {
	start := time.Now()
	e.store.Dispatch(RandomRequested{})

	img, err := e.deps.Catalog.FetchRandomImage(ctx)
	if err != nil {
		e.logFailure(ctx, OpRandom, start, err)
		e.store.Dispatch(RandomFailed{Err: err})
		return domain.Image{}, err
	}
	e.store.Dispatch(RandomSucceeded{Image: img})
	return img, nil
}

// FetchAndSaveRandomImage fetches a random image and saves it.
func (e *Effects) FetchAndSaveRandomImage(ctx context.Context) (domain.Image, error) {
	start := time.Now()
	e.store.Dispatch(FetchAndSaveRequested{})

	img, err := e.deps.Catalog.FetchAndSaveRandomImage(ctx)
	if err != nil {
		e.logFailure(ctx, OpFetchAndSave, start, err)
		e.store.Dispatch(FetchAndSaveFailed{Degraded: degradedRecord(img, err), Err: err})
		return img, err
	}
	e.store.Dispatch(FetchAndSaveSucceeded{Image: img})
	return img, nil
}

// FetchGalleryNextPage fetches the page after the ones already loaded. It
// does nothing once the last page has been seen.
func (e *Effects) FetchGalleryNextPage(ctx context.Context) error {
	snap := e.store.Snapshot()
	if !snap.Gallery.HasMore {
		return nil
	}
	return e.fetchGalleryPage(ctx, snap.Gallery.Page, snap.Gallery.Generation)
}

// RefreshGallery resets the gallery and fetches page 1. Results of loads
// started before the reset are discarded.
func (e *Effects) RefreshGallery(ctx context.Context) error {
	snap := e.store.Dispatch(ResetGallery{})
	return e.fetchGalleryPage(ctx, 1, snap.Gallery.Generation)
}

func (e *Effects) fetchGalleryPage(ctx context.Context, page, generation int) error {
	start := time.Now()
	e.store.Dispatch(GalleryRequested{Page: page, Generation: generation})

	result, err := e.deps.Catalog.FetchGalleryPage(ctx, page)
	if err != nil {
		e.logFailure(ctx, OpGallery, start, err)
		e.store.Dispatch(GalleryFailed{Page: page, Generation: generation, Err: err})
		return err
	}
	e.store.Dispatch(GallerySucceeded{
		Page:       page,
		Images:     result.Images,
		HasMore:    result.HasMore,
		Generation: generation,
	})

	logger.With(logger.Fields{
		logger.FieldPage:       page,
		logger.FieldCount:      len(result.Images),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Gallery page loaded")
	return nil
}

// degradedRecord returns the record persisted without a local copy, if
// err says only the download failed.
func degradedRecord(img domain.Image, err error) *domain.Image {
	if img.ID == "" || !errors.Is(err, domain.ErrDownloadFailed) {
		return nil
	}
	return &img
}
