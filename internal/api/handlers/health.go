package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/mergeballs/internal/arena"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(m *arena.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "mergeballs-api",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"sessions": m.GetActiveSessionCount(),
		})
	}
}
