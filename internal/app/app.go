// Package app wires configuration into the gallery components shared by
// the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/filecache"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/repository"
	"github.com/timmy/mygallery/internal/service"
	"github.com/timmy/mygallery/internal/source"
	"github.com/timmy/mygallery/internal/source/picsum"
	"github.com/timmy/mygallery/internal/state"
)

// App holds the wired components.
type App struct {
	Source  source.Source
	Cache   filecache.FileCache
	Images  repository.ImageStore
	Service *service.ImageService
	Store   *state.Store
	Effects *state.Effects
}

// Options override components, mainly for tests.
type Options struct {
	Source     source.Source
	PagePicker service.PagePicker
}

// Build wires every component from cfg.
// Parameters:
//   - ctx: context used while preparing storage backends.
//   - cfg: loaded configuration.
//   - log: base logger handed to the services.
//   - opts: optional overrides; may be nil.
// Returns:
//   - *App: wired application.
//   - error: non-nil if a backend cannot be opened.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	kv, err := repository.NewKeyValueStore(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	cache, err := filecache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open file cache: %w", err)
	}

	src := opts.Source
	if src == nil {
		src = picsum.NewClient(picsum.Config{
			BaseURL:      cfg.Source.BaseURL,
			Timeout:      cfg.Source.Timeout,
			MaxAttempts:  cfg.Source.RetryCount,
			RetryWait:    cfg.Source.RetryWaitTime,
			RetryMaxWait: cfg.Source.RetryMaxWait,
		})
	}

	picker := opts.PagePicker
	if picker == nil {
		picker = service.RandomPagePicker(cfg.Source.RandomMaxPage, nil)
	}

	images := repository.NewKVImageStore(kv, cache, cfg.Storage.Key)
	saveUC := service.NewSaveImageUseCase(images, cache, log)
	imageService := service.NewImageService(src, saveUC, log, &service.ImageServiceConfig{
		PageSize:   cfg.Gallery.PageSize,
		PagePicker: picker,
	})

	store := state.NewStore()
	effects := state.NewEffects(store, state.Deps{
		Save:    saveUC,
		Delete:  service.NewDeleteImageUseCase(images),
		List:    service.NewListSavedImagesUseCase(images),
		Clear:   service.NewClearAllImagesUseCase(images),
		Catalog: imageService,
	})

	log.WithFields(logger.Fields{
		logger.FieldSource: src.GetSourceID(),
		"storage":          cfg.Storage.Driver,
		"cache":            cfg.Cache.Backend,
	}).Info("Gallery components initialized")

	return &App{
		Source:  src,
		Cache:   cache,
		Images:  images,
		Service: imageService,
		Store:   store,
		Effects: effects,
	}, nil
}
