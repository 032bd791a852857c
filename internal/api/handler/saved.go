package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/state"
)

// SavedHandler serves the saved collection.
type SavedHandler struct {
	fx *state.Effects
}

// NewSavedHandler creates a new saved images handler.
func NewSavedHandler(fx *state.Effects) *SavedHandler {
	return &SavedHandler{fx: fx}
}

// List handles GET /api/v1/saved. ?reload=true re-reads the persisted
// collection first.
func (h *SavedHandler) List(c *gin.Context) {
	if c.Query("reload") == "true" {
		if err := h.fx.LoadSavedImages(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
	}
	snap := h.fx.Store().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"images": state.SavedImages(snap),
		"total":  len(snap.SavedImages),
	})
}

// Save handles POST /api/v1/saved with an image body.
func (h *SavedHandler) Save(c *gin.Context) {
	var img domain.Image
	if err := c.ShouldBindJSON(&img); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if state.IsSaving(h.fx.Store().Snapshot(), img.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Image " + img.ID + " is already being saved"})
		return
	}

	saved, err := h.fx.SaveImage(c.Request.Context(), img)
	respondSaved(c, saved, err)
}

// Delete handles DELETE /api/v1/saved/:id.
func (h *SavedHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.fx.DeleteImage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /api/v1/saved.
func (h *SavedHandler) Clear(c *gin.Context) {
	if err := h.fx.ClearAllImages(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
