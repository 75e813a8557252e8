package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/config"
	"github.com/playmatatu/mergeballs/internal/ws"
)

// HandleSessionWebSocket attaches a browser to the session named in its token.
func HandleSessionWebSocket(m *arena.Manager, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionTokenFrom(c)
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		sessionID, err := ParseSessionToken(cfg.JWTSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		s, err := m.GetSession(sessionID)
		if err != nil {
			respondSessionError(c, err)
			return
		}

		conn, err := ws.Upgrade(c.Writer, c.Request)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := ws.Serve(ctx, conn, s, hub); err != nil {
			log.Printf("[WS] %v", err)
		}
	}
}
