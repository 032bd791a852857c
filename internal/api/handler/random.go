package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/state"
)

// RandomHandler serves the random image and its history.
type RandomHandler struct {
	fx *state.Effects
}

// NewRandomHandler creates a new random image handler.
func NewRandomHandler(fx *state.Effects) *RandomHandler {
	return &RandomHandler{fx: fx}
}

func randomView(s state.State) gin.H {
	view := gin.H{
		"canGoBack":    s.History.CanGoBack(),
		"canGoForward": s.History.CanGoForward(),
		"historyIndex": s.History.Index,
		"historySize":  len(s.History.Entries),
	}
	if img, ok := state.RandomImage(s); ok {
		view["image"] = img
	} else {
		view["image"] = nil
	}
	return view
}

// Random handles GET /api/v1/random by fetching a new random image.
func (h *RandomHandler) Random(c *gin.Context) {
	if _, err := h.fx.FetchRandomImage(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, randomView(h.fx.Store().Snapshot()))
}

// FetchAndSave handles POST /api/v1/random/save.
func (h *RandomHandler) FetchAndSave(c *gin.Context) {
	img, err := h.fx.FetchAndSaveRandomImage(c.Request.Context())
	respondSaved(c, img, err)
}

// Back handles POST /api/v1/history/back.
func (h *RandomHandler) Back(c *gin.Context) {
	c.JSON(http.StatusOK, randomView(h.fx.Store().Dispatch(state.HistoryBack{})))
}

// Forward handles POST /api/v1/history/forward.
func (h *RandomHandler) Forward(c *gin.Context) {
	c.JSON(http.StatusOK, randomView(h.fx.Store().Dispatch(state.HistoryForward{})))
}
