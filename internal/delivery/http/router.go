package http

import (
	"github.com/cofoundly/cofoundly-backend/internal/delivery/http/handler"
	"github.com/cofoundly/cofoundly-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	checkInHandler   *handler.CheckInHandler
	contactHandler   *handler.ContactHandler
	discoveryHandler *handler.DiscoveryHandler
	authMiddleware   *middleware.AuthMiddleware
}

func NewRouter(
	checkInHandler *handler.CheckInHandler,
	contactHandler *handler.ContactHandler,
	discoveryHandler *handler.DiscoveryHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		checkInHandler:   checkInHandler,
		contactHandler:   contactHandler,
		discoveryHandler: discoveryHandler,
		authMiddleware:   authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Safety check-in routes
			checkIns := protected.Group("/check-ins")
			{
				checkIns.POST("", r.checkInHandler.Schedule)
				checkIns.GET("", r.checkInHandler.History)
				checkIns.GET("/:id", r.checkInHandler.Get)
				checkIns.POST("/:id/activate", r.checkInHandler.Activate)
				checkIns.POST("/:id/complete", r.checkInHandler.Complete)
				checkIns.POST("/:id/cancel", r.checkInHandler.Cancel)
				checkIns.POST("/:id/emergency", r.checkInHandler.TriggerEmergency)
				checkIns.POST("/:id/share", r.checkInHandler.ShareMeeting)
			}

			// Trusted contact routes
			contacts := protected.Group("/contacts")
			{
				contacts.GET("", r.contactHandler.List)
				contacts.POST("", r.contactHandler.Create)
				contacts.PUT("/:id", r.contactHandler.Update)
				contacts.DELETE("/:id", r.contactHandler.Delete)
			}

			// Discovery routes
			discovery := protected.Group("/discovery")
			{
				discovery.POST("/search", r.discoveryHandler.Search)
				discovery.GET("/presets", r.discoveryHandler.ListPresets)
				discovery.POST("/presets", r.discoveryHandler.SavePreset)
				discovery.POST("/presets/:id/search", r.discoveryHandler.SearchWithPreset)
				discovery.DELETE("/presets/:id", r.discoveryHandler.DeletePreset)
			}
		}
	}

	return router
}
