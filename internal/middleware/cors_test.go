package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/mergeballs/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ws := r.Group("/ws", WebSocketCORSCheck(cfg))
	ws.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		origin  string
		allowed bool
	}{
		{"dev localhost", "development", "http://localhost:3000", true},
		{"dev frontend", "development", "https://balls.example.com", true},
		{"dev stranger", "development", "https://evil.example.com", false},
		{"prod frontend", "production", "https://balls.example.com", true},
		{"prod localhost", "production", "http://localhost:3000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&config.Config{Environment: tt.env, FrontendURL: "https://balls.example.com"})
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if got != tt.allowed {
				t.Errorf("origin %s allowed=%v, want %v (status %d)", tt.origin, got, tt.allowed, w.Code)
			}
		})
	}
}

func TestWebSocketCORSCheck(t *testing.T) {
	cfg := &config.Config{Environment: "production", FrontendURL: "https://balls.example.com"}
	r := newRouter(cfg)

	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{"missing origin", "", http.StatusBadRequest},
		{"foreign origin", "https://evil.example.com", http.StatusForbidden},
		{"frontend origin", "https://balls.example.com", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Header.Set("Connection", "Upgrade")
			req.Header.Set("Upgrade", "websocket")
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
