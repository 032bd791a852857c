package state

import (
	"github.com/timmy/mygallery/internal/domain"
)

// fallbackMessages are recorded when a failure carries no message.
var fallbackMessages = map[Operation]string{
	OpGallery:      "Failed to load gallery",
	OpSaved:        "Failed to load saved images",
	OpRandom:       "Failed to fetch image",
	OpSave:         "Failed to save image",
	OpDelete:       "Failed to delete image",
	OpClearAll:     "Failed to clear images",
	OpFetchAndSave: "Failed to fetch and save image",
}

// Reduce returns the state that results from applying a to s. It is pure:
// s is never modified and unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoadSavedRequested:
		return pending(s, OpSaved)
	case LoadSavedSucceeded:
		next := succeeded(s, OpSaved)
		next.SavedImages = stripSaved(a.Images)
		return next
	case LoadSavedFailed:
		return failed(s, OpSaved, a.Err)

	case SaveRequested:
		next := pending(s, OpSave)
		next.Saving = adjustSaving(s.Saving, a.ImageID, 1)
		return next
	case SaveSucceeded:
		next := succeeded(s, OpSave)
		next.Saving = adjustSaving(s.Saving, a.Image.ID, -1)
		next.SavedImages = upsert(s.SavedImages, a.Image)
		return next
	case SaveFailed:
		next := failed(s, OpSave, a.Err)
		next.Saving = adjustSaving(s.Saving, a.ImageID, -1)
		if a.Degraded != nil {
			next.SavedImages = upsert(s.SavedImages, *a.Degraded)
		}
		return next

	case DeleteRequested:
		return pending(s, OpDelete)
	case DeleteSucceeded:
		next := succeeded(s, OpDelete)
		next.SavedImages = removeByID(s.SavedImages, a.ImageID)
		return next
	case DeleteFailed:
		return failed(s, OpDelete, a.Err)

	case ClearAllRequested:
		return pending(s, OpClearAll)
	case ClearAllSucceeded:
		next := succeeded(s, OpClearAll)
		next.SavedImages = []domain.Image{}
		return next
	case ClearAllFailed:
		return failed(s, OpClearAll, a.Err)

	case RandomRequested:
		return pending(s, OpRandom)
	case RandomSucceeded:
		next := succeeded(s, OpRandom)
		setRandom(&next, a.Image)
		return next
	case RandomFailed:
		return failed(s, OpRandom, a.Err)

	case FetchAndSaveRequested:
		return pending(s, OpFetchAndSave)
	case FetchAndSaveSucceeded:
		next := succeeded(s, OpFetchAndSave)
		setRandom(&next, a.Image)
		next.SavedImages = upsert(s.SavedImages, a.Image)
		return next
	case FetchAndSaveFailed:
		next := failed(s, OpFetchAndSave, a.Err)
		if a.Degraded != nil {
			setRandom(&next, *a.Degraded)
			next.SavedImages = upsert(s.SavedImages, *a.Degraded)
		}
		return next

	case GalleryRequested:
		if a.Generation != s.Gallery.Generation {
			return s
		}
		return pending(s, OpGallery)
	case GallerySucceeded:
		if a.Generation != s.Gallery.Generation {
			return s
		}
		next := succeeded(s, OpGallery)
		if a.Page <= 1 {
			next.Gallery.Images = appendUnique(nil, a.Images)
		} else {
			next.Gallery.Images = appendUnique(s.Gallery.Images, a.Images)
		}
		next.Gallery.Page = a.Page + 1
		next.Gallery.HasMore = a.HasMore
		return next
	case GalleryFailed:
		if a.Generation != s.Gallery.Generation {
			return s
		}
		return failed(s, OpGallery, a.Err)

	case ClearError:
		if _, ok := s.Errors[a.Op]; !ok {
			return s
		}
		next := s
		next.Errors = copyErrors(s.Errors)
		delete(next.Errors, a.Op)
		return next
	case ClearAllErrors:
		next := s
		next.Errors = map[Operation]string{}
		return next
	case ResetGallery:
		next := s
		next.Gallery = Gallery{
			Images:     []domain.Image{},
			Page:       1,
			HasMore:    true,
			Generation: s.Gallery.Generation + 1,
		}
		next.Status = withStatus(s.Status, OpGallery, StatusIdle)
		next.Errors = withoutError(s.Errors, OpGallery)
		return next
	case ResetOperationStatus:
		if _, ok := fallbackMessages[a.Op]; !ok {
			return s
		}
		next := s
		next.Status = withStatus(s.Status, a.Op, StatusIdle)
		next.Errors = withoutError(s.Errors, a.Op)
		return next
	case HistoryBack:
		return moveHistory(s, s.History.Back())
	case HistoryForward:
		return moveHistory(s, s.History.Forward())
	}
	return s
}

func pending(s State, op Operation) State {
	next := s
	next.Status = withStatus(s.Status, op, StatusPending)
	next.Errors = withoutError(s.Errors, op)
	return next
}

func succeeded(s State, op Operation) State {
	next := s
	next.Status = withStatus(s.Status, op, StatusSucceeded)
	return next
}

func failed(s State, op Operation, err error) State {
	msg := domain.UserMessage(err)
	if msg == "" {
		msg = fallbackMessages[op]
	}
	next := s
	next.Status = withStatus(s.Status, op, StatusFailed)
	next.Errors = copyErrors(s.Errors)
	next.Errors[op] = msg
	return next
}

func withStatus(status map[Operation]Status, op Operation, v Status) map[Operation]Status {
	out := make(map[Operation]Status, len(status)+1)
	for k, val := range status {
		out[k] = val
	}
	out[op] = v
	return out
}

func copyErrors(errs map[Operation]string) map[Operation]string {
	out := make(map[Operation]string, len(errs)+1)
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func withoutError(errs map[Operation]string, op Operation) map[Operation]string {
	if _, ok := errs[op]; !ok {
		return errs
	}
	out := copyErrors(errs)
	delete(out, op)
	return out
}

func adjustSaving(saving map[string]int, id string, delta int) map[string]int {
	out := make(map[string]int, len(saving)+1)
	for k, v := range saving {
		out[k] = v
	}
	if n := out[id] + delta; n > 0 {
		out[id] = n
	} else {
		delete(out, id)
	}
	return out
}

// upsert replaces the record with img.ID in place or appends img.
func upsert(images []domain.Image, img domain.Image) []domain.Image {
	img = img.WithoutDerived()
	out := make([]domain.Image, 0, len(images)+1)
	replaced := false
	for _, existing := range images {
		if existing.ID == img.ID {
			out = append(out, img)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, img)
	}
	return out
}

func removeByID(images []domain.Image, id string) []domain.Image {
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		if img.ID != id {
			out = append(out, img)
		}
	}
	return out
}

// appendUnique returns base followed by the images whose id is not yet present.
func appendUnique(base, images []domain.Image) []domain.Image {
	seen := make(map[string]struct{}, len(base)+len(images))
	out := make([]domain.Image, 0, len(base)+len(images))
	for _, img := range base {
		seen[img.ID] = struct{}{}
		out = append(out, img)
	}
	for _, img := range images {
		if _, dup := seen[img.ID]; dup {
			continue
		}
		seen[img.ID] = struct{}{}
		out = append(out, img.WithoutDerived())
	}
	return out
}

func stripSaved(images []domain.Image) []domain.Image {
	out := make([]domain.Image, len(images))
	for i, img := range images {
		out[i] = img.WithoutDerived()
	}
	return out
}

func setRandom(s *State, img domain.Image) {
	img = img.WithoutDerived()
	s.RandomImage = &img
	s.History = s.History.Push(img)
}

func moveHistory(s State, h History) State {
	if h.Index == s.History.Index {
		return s
	}
	next := s
	next.History = h
	if img, ok := h.Current(); ok {
		next.RandomImage = &img
	}
	return next
}
