package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/state"
)

// StateHandler exposes the whole application state.
type StateHandler struct {
	store *state.Store
}

// NewStateHandler creates a new state handler.
func NewStateHandler(store *state.Store) *StateHandler {
	return &StateHandler{store: store}
}

// Get handles GET /api/v1/state.
func (h *StateHandler) Get(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"savedImages": state.SavedImages(snap),
		"gallery":     galleryView(snap),
		"random":      randomView(snap),
		"status":      snap.Status,
		"errors":      snap.Errors,
		"saving":      snap.Saving,
	})
}

// ClearError handles DELETE /api/v1/errors/:op. The op "all" clears every
// error.
func (h *StateHandler) ClearError(c *gin.Context) {
	name := c.Param("op")
	if name == "all" {
		h.store.Dispatch(state.ClearAllErrors{})
		c.Status(http.StatusNoContent)
		return
	}

	op, ok := state.ParseOperation(name)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown operation: " + name})
		return
	}
	if c.Query("reset") == "true" {
		h.store.Dispatch(state.ResetOperationStatus{Op: op})
	} else {
		h.store.Dispatch(state.ClearError{Op: op})
	}
	c.Status(http.StatusNoContent)
}
