package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/mygallery/internal/api/handler"
	"github.com/timmy/mygallery/internal/api/middleware"
	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/logger"
	"github.com/timmy/mygallery/internal/source"
	"github.com/timmy/mygallery/internal/state"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(fx *state.Effects, src source.Source, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(src)
	stateHandler := handler.NewStateHandler(fx.Store())
	galleryHandler := handler.NewGalleryHandler(fx)
	randomHandler := handler.NewRandomHandler(fx)
	savedHandler := handler.NewSavedHandler(fx)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/state", stateHandler.Get)
		v1.DELETE("/errors/:op", stateHandler.ClearError)

		// Gallery
		v1.GET("/gallery", galleryHandler.Get)
		v1.POST("/gallery/next", galleryHandler.Next)
		v1.POST("/gallery/refresh", galleryHandler.Refresh)

		// Random image
		v1.GET("/random", randomHandler.Random)
		v1.POST("/random/save", randomHandler.FetchAndSave)
		v1.POST("/history/back", randomHandler.Back)
		v1.POST("/history/forward", randomHandler.Forward)

		// Saved images
		v1.GET("/saved", savedHandler.List)
		v1.POST("/saved", savedHandler.Save)
		v1.DELETE("/saved", savedHandler.Clear)
		v1.DELETE("/saved/:id", savedHandler.Delete)
	}

	return r
}
