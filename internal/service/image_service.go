package service

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/source"
)

const (
	// DefaultPageSize is the gallery page size.
	DefaultPageSize = 10
	// DefaultRandomMaxPage bounds the page picked for a random image.
	DefaultRandomMaxPage = 100
)

// PagePicker returns the catalog page a random image is taken from.
type PagePicker func() int

// RandomPagePicker picks uniformly in [1, maxPage]. A nil rng uses the
// global source.
func RandomPagePicker(maxPage int, rng *rand.Rand) PagePicker {
	if maxPage < 1 {
		maxPage = DefaultRandomMaxPage
	}
	if rng == nil {
		return func() int { return rand.IntN(maxPage) + 1 }
	}
	var mu sync.Mutex
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return rng.IntN(maxPage) + 1
	}
}

// FixedPagePicker always returns page.
func FixedPagePicker(page int) PagePicker {
	return func() int { return page }
}

// GalleryPage is one fetched page of the remote catalog.
type GalleryPage struct {
	Images  []domain.Image `json:"images"`
	Page    int            `json:"page"`
	HasMore bool           `json:"hasMore"`
}

// ImageService talks to the remote catalog.
type ImageService struct {
	source   source.Source
	save     *SaveImageUseCase
	pick     PagePicker
	pageSize int
	logger   *logger.Logger
}

// ImageServiceConfig holds configuration for the image service
type ImageServiceConfig struct {
	PageSize   int
	PagePicker PagePicker
}

// NewImageService creates an ImageService.
// Parameters:
//   - src: remote catalog.
//   - save: use case used by FetchAndSaveRandomImage.
//   - log: fallback logger.
//   - cfg: page size and random page picker; nil uses the defaults.
// Returns:
//   - *ImageService: service instance.
func NewImageService(src source.Source, save *SaveImageUseCase, log *logger.Logger, cfg *ImageServiceConfig) *ImageService {
	if cfg == nil {
		cfg = &ImageServiceConfig{}
	}
	s := &ImageService{
		source:   src,
		save:     save,
		pick:     cfg.PagePicker,
		pageSize: cfg.PageSize,
		logger:   log,
	}
	if s.pick == nil {
		s.pick = RandomPagePicker(DefaultRandomMaxPage, nil)
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	return s
}

// PageSize returns the gallery page size.
func (s *ImageService) PageSize() int {
	return s.pageSize
}

// FetchRandomImage fetches the single image on a random catalog page.
func (s *ImageService) FetchRandomImage(ctx context.Context) (domain.Image, error) {
	page := s.pick()
	contextLogger(ctx, s.logger).WithField(logger.FieldPage, page).Debug("Fetching random image")

	images, err := s.source.FetchPage(ctx, page, 1)
	if err != nil {
		return domain.Image{}, err
	}
	if len(images) == 0 {
		return domain.Image{}, domain.ErrNoImages
	}
	return images[0], nil
}

// FetchAndSaveRandomImage fetches a random image and saves it. On a
// download failure the degraded record is returned with the error.
func (s *ImageService) FetchAndSaveRandomImage(ctx context.Context) (domain.Image, error) {
	img, err := s.FetchRandomImage(ctx)
	if err != nil {
		return domain.Image{}, err
	}
	return s.save.Execute(ctx, img)
}

// FetchGalleryPage fetches page with the gallery page size. HasMore is
// true when the page came back full.
func (s *ImageService) FetchGalleryPage(ctx context.Context, page int) (GalleryPage, error) {
	images, err := s.source.FetchPage(ctx, page, s.pageSize)
	if err != nil {
		return GalleryPage{}, err
	}
	return GalleryPage{
		Images:  images,
		Page:    page,
		HasMore: len(images) == s.pageSize,
	}, nil
}
