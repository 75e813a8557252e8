package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/mergeballs/internal/config"
)

// GetConfig returns the values the frontend needs to draw and pace the game
func GetConfig(cfg *config.Config, tuning *config.TuningConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_hz": cfg.TickHz,
			"tuning":  tuning,
		})
	}
}
