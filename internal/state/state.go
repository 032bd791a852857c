// Package state holds the application state of the gallery: the saved
// collection, the paginated gallery, per-operation status and the random
// image history. State changes only through Reduce.
package state

import "github.com/timmy/mygallery/internal/domain"

// Operation names an asynchronous operation tracked in State.
type Operation string

const (
	OpGallery      Operation = "gallery"
	OpSaved        Operation = "saved"
	OpRandom       Operation = "random"
	OpSave         Operation = "save"
	OpDelete       Operation = "delete"
	OpClearAll     Operation = "clearAll"
	OpFetchAndSave Operation = "fetchAndSave"
)

// Operations lists every tracked operation.
var Operations = []Operation{OpGallery, OpSaved, OpRandom, OpSave, OpDelete, OpClearAll, OpFetchAndSave}

// ParseOperation returns the Operation named s.
func ParseOperation(s string) (Operation, bool) {
	for _, op := range Operations {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

// Status is the lifecycle phase of an operation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Gallery is the concatenation of the remote pages fetched so far.
type Gallery struct {
	Images []domain.Image `json:"images"`
	// Page is the next page to fetch.
	Page    int  `json:"page"`
	HasMore bool `json:"hasMore"`
	// Generation increases on every reset; results tagged with an older
	// generation are dropped.
	Generation int `json:"generation"`
}

// State is the whole application state. Values are treated as immutable:
// Reduce returns a new State and never writes into its input.
type State struct {
	SavedImages []domain.Image       `json:"savedImages"`
	Gallery     Gallery              `json:"gallery"`
	RandomImage *domain.Image        `json:"randomImage"`
	Status      map[Operation]Status `json:"status"`
	Errors      map[Operation]string `json:"errors"`
	// Saving counts in-flight saves per image id.
	Saving  map[string]int `json:"saving"`
	History History        `json:"history"`
}

// Initial returns the state before any action.
func Initial() State {
	status := make(map[Operation]Status, len(Operations))
	for _, op := range Operations {
		status[op] = StatusIdle
	}
	return State{
		SavedImages: []domain.Image{},
		Gallery:     Gallery{Images: []domain.Image{}, Page: 1, HasMore: true},
		Status:      status,
		Errors:      map[Operation]string{},
		Saving:      map[string]int{},
		History:     NewHistory(),
	}
}

// normalized returns a deep copy of s with every map allocated, every
// operation given a status and the history index in range.
func (s State) normalized() State {
	next := s.Clone()
	if next.SavedImages == nil {
		next.SavedImages = []domain.Image{}
	}
	if next.Gallery.Images == nil {
		next.Gallery.Images = []domain.Image{}
	}
	if next.Gallery.Page < 1 {
		next.Gallery.Page = 1
	}
	if next.Status == nil {
		next.Status = make(map[Operation]Status, len(Operations))
	}
	for _, op := range Operations {
		if next.Status[op] == "" {
			next.Status[op] = StatusIdle
		}
	}
	if next.Errors == nil {
		next.Errors = map[Operation]string{}
	}
	if next.Saving == nil {
		next.Saving = map[string]int{}
	}
	next.History = next.History.normalized()
	return next
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.SavedImages = domain.CloneImages(s.SavedImages)
	out.Gallery.Images = domain.CloneImages(s.Gallery.Images)
	if s.RandomImage != nil {
		img := *s.RandomImage
		out.RandomImage = &img
	}
	out.Status = make(map[Operation]Status, len(s.Status))
	for k, v := range s.Status {
		out.Status[k] = v
	}
	out.Errors = make(map[Operation]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	out.Saving = make(map[string]int, len(s.Saving))
	for k, v := range s.Saving {
		out.Saving[k] = v
	}
	out.History = s.History.clone()
	return out
}
