package state

import "github.com/timmy/mygallery/internal/domain"

// History is the browser-like list of random images viewed. Index is -1
// while empty.
type History struct {
	Entries []domain.Image `json:"entries"`
	Index   int            `json:"index"`
}

// NewHistory returns an empty History.
func NewHistory() History {
	return History{Entries: []domain.Image{}, Index: -1}
}

// Push drops every entry after the current one and appends img.
func (h History) Push(img domain.Image) History {
	keep := min(max(h.Index+1, 0), len(h.Entries))
	entries := make([]domain.Image, 0, keep+1)
	entries = append(entries, h.Entries[:keep]...)
	entries = append(entries, img)
	return History{Entries: entries, Index: len(entries) - 1}
}

// Back moves to the previous entry, if any.
func (h History) Back() History {
	if h.CanGoBack() {
		h.Index--
	}
	return h
}

// Forward moves to the next entry, if any.
func (h History) Forward() History {
	if h.CanGoForward() {
		h.Index++
	}
	return h
}

func (h History) CanGoBack() bool {
	return h.Index > 0
}

func (h History) CanGoForward() bool {
	return h.Index < len(h.Entries)-1
}

// Current returns the entry at Index.
func (h History) Current() (domain.Image, bool) {
	if h.Index < 0 || h.Index >= len(h.Entries) {
		return domain.Image{}, false
	}
	return h.Entries[h.Index], true
}

// normalized clamps Index into the range of Entries, -1 when empty.
func (h History) normalized() History {
	if h.Entries == nil {
		h.Entries = []domain.Image{}
	}
	h.Index = min(max(h.Index, -1), len(h.Entries)-1)
	return h
}

func (h History) clone() History {
	entries := domain.CloneImages(h.Entries)
	if entries == nil {
		entries = []domain.Image{}
	}
	return History{Entries: entries, Index: h.Index}
}
