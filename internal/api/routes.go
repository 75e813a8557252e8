package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/mergeballs/internal/api/handlers"
	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/config"
	"github.com/playmatatu/mergeballs/internal/middleware"
	"github.com/playmatatu/mergeballs/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, m *arena.Manager, hub *ws.Hub, cfg *config.Config, tuning *config.TuningConfig) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	router.GET("/health", handlers.HealthCheck(m))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))
		v1.GET("/config", handlers.GetConfig(cfg, tuning))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(m, cfg))
			sessions.GET("", handlers.ListSessions(m))
			sessions.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(m, hub, cfg))
			sessions.GET("/:id", handlers.GetSessionState(m))
			sessions.POST("/:id/restart", handlers.RestartSession(m))
			sessions.DELETE("/:id", handlers.EndSession(m))
		}
	}
}
