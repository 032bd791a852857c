package domain

import "strings"

// Image represents a gallery image as seen by every layer of the app.
// IsSaved is derived from the saved collection and is never persisted.
type Image struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Author    string `json:"author"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	LocalPath string `json:"localPath,omitempty"`
	IsSaved   bool   `json:"isSaved,omitempty"`
}

// Validate checks the fields required before any I/O is attempted.
// Parameters: none.
// Returns:
//   - error: ErrInvalidImage wrapped in an InvalidArgumentError naming the first missing field.
func (img Image) Validate() error {
	if strings.TrimSpace(img.ID) == "" || !safeID(img.ID) {
		return &InvalidArgumentError{Field: "id", Err: ErrInvalidImage}
	}
	if strings.TrimSpace(img.URL) == "" {
		return &InvalidArgumentError{Field: "url", Err: ErrInvalidImage}
	}
	return nil
}

// safeID reports whether id can be used as a file name stem. Ids name
// cached files, so path separators and dot segments are rejected.
func safeID(id string) bool {
	if id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}

// HasLocalCopy reports whether the record references a cached file.
func (img Image) HasLocalCopy() bool {
	return img.LocalPath != ""
}

// WithoutDerived returns a copy suitable for persistence.
// Parameters: none.
// Returns:
//   - Image: the record with IsSaved cleared.
func (img Image) WithoutDerived() Image {
	img.IsSaved = false
	return img
}

// WithSaved returns a copy with the derived saved flag set.
func (img Image) WithSaved(saved bool) Image {
	img.IsSaved = saved
	return img
}

// PicsumImage is the wire shape returned by the photo catalog list endpoint.
type PicsumImage struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

// ToImage converts a catalog entry into a domain Image.
// The download URL is used as the image URL since it points at the raw bytes.
func (p PicsumImage) ToImage() Image {
	return Image{
		ID:     p.ID,
		URL:    p.DownloadURL,
		Author: p.Author,
		Width:  p.Width,
		Height: p.Height,
	}
}

// CloneImages copies a slice of images so callers cannot alias stored state.
func CloneImages(images []Image) []Image {
	if images == nil {
		return nil
	}
	dup := make([]Image, len(images))
	copy(dup, images)
	return dup
}
