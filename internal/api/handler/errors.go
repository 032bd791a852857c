package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/api/middleware"
	"github.com/timmy/mygallery/internal/domain"
)

// statusFor maps the error taxonomy to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageRead), errors.Is(err, domain.ErrStorageWrite):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNoImages):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		middleware.GetLogger(c).WithError(err).Error("Request failed")
	}
	c.JSON(status, gin.H{
		"error": domain.UserMessage(err),
	})
}

// respondSaved writes a saved record, as 202 with degraded=true when the
// local copy failed.
func respondSaved(c *gin.Context, img domain.Image, err error) {
	if err == nil {
		c.JSON(http.StatusCreated, gin.H{"image": img.WithSaved(true), "degraded": false})
		return
	}
	if domain.IsDegraded(err) && img.ID != "" {
		c.JSON(http.StatusAccepted, gin.H{
			"image":    img.WithSaved(true),
			"degraded": true,
			"message":  domain.UserMessage(err),
		})
		return
	}
	respondError(c, err)
}
