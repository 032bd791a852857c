package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/state"
)

// GalleryHandler serves the paginated remote gallery.
type GalleryHandler struct {
	fx *state.Effects
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(fx *state.Effects) *GalleryHandler {
	return &GalleryHandler{fx: fx}
}

func galleryView(s state.State) gin.H {
	return gin.H{
		"images":  state.GalleryImages(s),
		"page":    s.Gallery.Page,
		"hasMore": s.Gallery.HasMore,
		"status":  s.Status[state.OpGallery],
		"error":   s.Errors[state.OpGallery],
	}
}

// Get handles GET /api/v1/gallery. The first page is loaded on first use.
func (h *GalleryHandler) Get(c *gin.Context) {
	snap := h.fx.Store().Snapshot()
	if len(snap.Gallery.Images) == 0 && snap.Gallery.Page == 1 && snap.Status[state.OpGallery] == state.StatusIdle {
		if err := h.fx.FetchGalleryNextPage(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		snap = h.fx.Store().Snapshot()
	}
	c.JSON(http.StatusOK, galleryView(snap))
}

// Next handles POST /api/v1/gallery/next.
func (h *GalleryHandler) Next(c *gin.Context) {
	if err := h.fx.FetchGalleryNextPage(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, galleryView(h.fx.Store().Snapshot()))
}

// Refresh handles POST /api/v1/gallery/refresh.
func (h *GalleryHandler) Refresh(c *gin.Context) {
	if err := h.fx.RefreshGallery(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, galleryView(h.fx.Store().Snapshot()))
}
