package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/config"
)

const requestTimeout = 2 * time.Second

// CreateSession starts a new simulation and returns a token for attaching to
// it over the websocket.
func CreateSession(m *arena.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.CreateSession()

		ttl := time.Duration(cfg.SessionTokenTTLMinutes) * time.Minute
		token, exp, err := IssueSessionToken(cfg.JWTSecret, s.ID, ttl)
		if err != nil {
			log.Printf("[API] %v", err)
			m.EndSession(s.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"session_id": s.ID,
			"token":      token,
			"expires_at": exp.UTC().Format(time.RFC3339),
			"ws_url":     "/api/v1/sessions/ws?token=" + token,
		})
	}
}

// ListSessions returns every running session.
func ListSessions(m *arena.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := m.ListSessions()
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
	}
}

// GetSessionState returns the latest snapshot of a session.
func GetSessionState(m *arena.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, m)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		snap, err := s.Snapshot(ctx)
		if err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// RestartSession starts a new round in a session whose round is over.
func RestartSession(m *arena.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, m)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := s.Send(ctx, arena.Restart{}); err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "restart requested", "session_id": s.ID})
	}
}

// EndSession stops a session and disconnects its viewers.
func EndSession(m *arena.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.EndSession(c.Param("id")); err != nil {
			respondSessionError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func lookupSession(c *gin.Context, m *arena.Manager) (*arena.Session, bool) {
	s, err := m.GetSession(c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return nil, false
	}
	return s, true
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, arena.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, arena.ErrSessionStopped):
		c.JSON(http.StatusGone, gin.H{"error": "session stopped"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session busy"})
	default:
		log.Printf("[API] session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
