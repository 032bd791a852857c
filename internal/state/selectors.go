package state

import "github.com/timmy/mygallery/internal/domain"

// SavedIDSet returns the ids of the saved collection.
func SavedIDSet(s State) map[string]struct{} {
	set := make(map[string]struct{}, len(s.SavedImages))
	for _, img := range s.SavedImages {
		set[img.ID] = struct{}{}
	}
	return set
}

// IsSaved reports whether id is in the saved collection.
func IsSaved(s State, id string) bool {
	for _, img := range s.SavedImages {
		if img.ID == id {
			return true
		}
	}
	return false
}

// IsSaving reports whether a save for id is in flight.
func IsSaving(s State, id string) bool {
	return s.Saving[id] > 0
}

// WithSavedFlags returns copies of images with IsSaved derived from the
// saved collection.
func WithSavedFlags(s State, images []domain.Image) []domain.Image {
	saved := SavedIDSet(s)
	out := make([]domain.Image, len(images))
	for i, img := range images {
		_, ok := saved[img.ID]
		out[i] = img.WithSaved(ok)
	}
	return out
}

// GalleryImages returns the gallery with saved flags.
func GalleryImages(s State) []domain.Image {
	return WithSavedFlags(s, s.Gallery.Images)
}

// SavedImages returns the saved collection, every entry flagged as saved.
func SavedImages(s State) []domain.Image {
	return WithSavedFlags(s, s.SavedImages)
}

// RandomImage returns the current random image with its saved flag.
func RandomImage(s State) (domain.Image, bool) {
	if s.RandomImage == nil {
		return domain.Image{}, false
	}
	return s.RandomImage.WithSaved(IsSaved(s, s.RandomImage.ID)), true
}
