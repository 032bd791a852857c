package state

import "github.com/timmy/mygallery/internal/domain"

// Action is a state transition request handled by Reduce.
type Action interface {
	Type() string
}

// Saved collection load.
type (
	LoadSavedRequested struct{}
	LoadSavedSucceeded struct{ Images []domain.Image }
	LoadSavedFailed    struct{ Err error }
)

// Single image save. A failed save may carry the degraded record that was
// persisted without a local copy.
type (
	SaveRequested struct{ ImageID string }
	SaveSucceeded struct{ Image domain.Image }
	SaveFailed    struct {
		ImageID  string
		Degraded *domain.Image
		Err      error
	}
)

// Saved image deletion.
type (
	DeleteRequested struct{ ImageID string }
	DeleteSucceeded struct{ ImageID string }
	DeleteFailed    struct {
		ImageID string
		Err     error
	}
)

// Clearing the saved collection.
type (
	ClearAllRequested struct{}
	ClearAllSucceeded struct{}
	ClearAllFailed    struct{ Err error }
)

// Random image fetch.
type (
	RandomRequested struct{}
	RandomSucceeded struct{ Image domain.Image }
	RandomFailed    struct{ Err error }
)

// Random image fetch followed by a save.
type (
	FetchAndSaveRequested struct{}
	FetchAndSaveSucceeded struct{ Image domain.Image }
	FetchAndSaveFailed    struct {
		Degraded *domain.Image
		Err      error
	}
)

// Gallery page fetch, tagged with the gallery generation it was issued in.
type (
	GalleryRequested struct {
		Page       int
		Generation int
	}
	GallerySucceeded struct {
		Page       int
		Images     []domain.Image
		HasMore    bool
		Generation int
	}
	GalleryFailed struct {
		Page       int
		Generation int
		Err        error
	}
)

// Synchronous actions.
type (
	ClearError           struct{ Op Operation }
	ClearAllErrors       struct{}
	ResetGallery         struct{}
	ResetOperationStatus struct{ Op Operation }
	HistoryBack          struct{}
	HistoryForward       struct{}
)

func (LoadSavedRequested) Type() string    { return "saved/requested" }
func (LoadSavedSucceeded) Type() string    { return "saved/succeeded" }
func (LoadSavedFailed) Type() string       { return "saved/failed" }
func (SaveRequested) Type() string         { return "save/requested" }
func (SaveSucceeded) Type() string         { return "save/succeeded" }
func (SaveFailed) Type() string            { return "save/failed" }
func (DeleteRequested) Type() string       { return "delete/requested" }
func (DeleteSucceeded) Type() string       { return "delete/succeeded" }
func (DeleteFailed) Type() string          { return "delete/failed" }
func (ClearAllRequested) Type() string     { return "clearAll/requested" }
func (ClearAllSucceeded) Type() string     { return "clearAll/succeeded" }
func (ClearAllFailed) Type() string        { return "clearAll/failed" }
func (RandomRequested) Type() string       { return "random/requested" }
func (RandomSucceeded) Type() string       { return "random/succeeded" }
func (RandomFailed) Type() string          { return "random/failed" }
func (FetchAndSaveRequested) Type() string { return "fetchAndSave/requested" }
func (FetchAndSaveSucceeded) Type() string { return "fetchAndSave/succeeded" }
func (FetchAndSaveFailed) Type() string    { return "fetchAndSave/failed" }
func (GalleryRequested) Type() string      { return "gallery/requested" }
func (GallerySucceeded) Type() string      { return "gallery/succeeded" }
func (GalleryFailed) Type() string         { return "gallery/failed" }
func (ClearError) Type() string            { return "errors/clear" }
func (ClearAllErrors) Type() string        { return "errors/clearAll" }
func (ResetGallery) Type() string          { return "gallery/reset" }
func (ResetOperationStatus) Type() string  { return "status/reset" }
func (HistoryBack) Type() string           { return "history/back" }
func (HistoryForward) Type() string        { return "history/forward" }
