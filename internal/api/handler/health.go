package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/source"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	source source.Source
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(src source.Source) *HealthHandler {
	return &HealthHandler{source: src}
}

// Health returns the health status of the service and the catalog it reads.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"source":     h.source.GetSourceID(),
		"sourceName": h.source.GetDisplayName(),
	})
}
