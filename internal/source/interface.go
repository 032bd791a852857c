package source

import (
	"context"

	"github.com/timmy/mygallery/internal/domain"
)

// Source defines the interface for remote image catalogs.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// FetchPage fetches one page of image metadata.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - page: 1-based page number.
	//   - limit: page size.
	// Returns:
	//   - []domain.Image: images in catalog order; fewer than limit on the last page.
	//   - error: *domain.NetworkError on transport or HTTP failure.
	FetchPage(ctx context.Context, page, limit int) ([]domain.Image, error)
}
