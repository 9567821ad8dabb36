package routes

import (
	"github.com/gin-gonic/gin"

	"adaptive-voice/internal/api/v1/handlers"
	"adaptive-voice/internal/api/v1/services"
	"adaptive-voice/internal/app/network"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	Sessions      *services.SessionManager
	NetworkTester *network.Tester
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	sessionHandler := handlers.NewSessionHandler(container.Sessions)
	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.POST("/:id/transcribe", sessionHandler.Transcribe)
		sessions.POST("/:id/feedback", sessionHandler.Feedback)
		sessions.GET("/:id/report", sessionHandler.Report)
		sessions.PATCH("/:id/options", sessionHandler.UpdateOptions)
		sessions.POST("/:id/engine", sessionHandler.SwitchEngine)
		sessions.DELETE("/:id", sessionHandler.Close)
	}

	probeHandler := handlers.NewProbeHandler(container.NetworkTester)
	probe := router.Group("/probe")
	{
		probe.GET("", probeHandler.Payload)
		probe.GET("/quality", probeHandler.Quality)
	}
}
