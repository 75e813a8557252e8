package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/config"
	"github.com/playmatatu/mergeballs/internal/game"
	"github.com/playmatatu/mergeballs/internal/protocol"
	"github.com/playmatatu/mergeballs/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	manager *arena.Manager
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Environment:            "test",
		FrontendURL:            "http://localhost:5173",
		TickHz:                 60,
		SessionTokenTTLMinutes: 5,
		JWTSecret:              "test-secret",
	}
	tuning := config.DefaultTuningConfig()
	m := arena.NewManager(ctx, arena.Options{
		TickHz: cfg.TickHz,
		Tuning: tuning.Game(),
		Bounds: tuning.InitialBounds(),
		Rand:   func() *rand.Rand { return rand.New(rand.NewSource(3)) },
	}, nil)
	t.Cleanup(m.StopAll)

	router := gin.New()
	SetupRoutes(router, m, ws.NewHub(), cfg, tuning)
	return &testServer{router: router, manager: m, cfg: cfg}
}

func (s *testServer) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type createResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	WSURL     string `json:"ws_url"`
}

func (s *testServer) create(t *testing.T) createResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/sessions")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := s.do(http.MethodGet, path)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "mergeballs-api") {
			t.Errorf("%s: unexpected body %s", path, w.Body.String())
		}
	}
}

func TestGetConfig(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/config")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		TickHz int                 `json:"tick_hz"`
		Tuning config.TuningConfig `json:"tuning"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TickHz != 60 || body.Tuning.Gravity != game.Gravity || len(body.Tuning.Palette) != len(game.DefaultPalette) {
		t.Errorf("unexpected config: %+v", body)
	}
}

func TestCreateAndInspectSession(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t)

	if !strings.HasPrefix(created.SessionID, "sess_") || created.Token == "" {
		t.Fatalf("unexpected create response: %+v", created)
	}
	if !strings.Contains(created.WSURL, created.Token) {
		t.Errorf("ws_url should carry the token: %s", created.WSURL)
	}

	w := s.do(http.MethodGet, "/api/v1/sessions/"+created.SessionID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != game.StatusRunning || len(snap.Bodies) != 0 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	w = s.do(http.MethodGet, "/api/v1/sessions")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), created.SessionID) {
		t.Errorf("session missing from list: %d %s", w.Code, w.Body.String())
	}

	if w := s.do(http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/restart"); w.Code != http.StatusAccepted {
		t.Errorf("restart: expected 202, got %d", w.Code)
	}

	if w := s.do(http.MethodDelete, "/api/v1/sessions/"+created.SessionID); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/sessions/"+created.SessionID); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sessions/sess_missing"},
		{http.MethodPost, "/api/v1/sessions/sess_missing/restart"},
		{http.MethodDelete, "/api/v1/sessions/sess_missing"},
	} {
		if w := s.do(tc.method, tc.path); w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestWebSocketRejectsBadTokens(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(http.MethodGet, "/api/v1/sessions/ws"); w.Code != http.StatusBadRequest {
		t.Errorf("missing token: expected 400, got %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/sessions/ws?token=nope"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}

	created := s.create(t)
	s.manager.EndSession(created.SessionID)
	if w := s.do(http.MethodGet, created.WSURL); w.Code != http.StatusNotFound {
		t.Errorf("ended session: expected 404, got %d", w.Code)
	}
}

func TestWebSocketPlaysARound(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	created := s.create(t)
	header := http.Header{}
	header.Set("Origin", "http://localhost:5173")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+created.WSURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := protocol.DecodeEnvelope(b)
	if err != nil || env.T != protocol.MsgWelcome {
		t.Fatalf("expected welcome, got %s (%v)", b, err)
	}

	click, _ := protocol.Encode(protocol.MsgClick, protocol.Click{X: 300, Y: 100})
	if err := conn.WriteMessage(websocket.TextMessage, click); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w := s.do(http.MethodGet, "/api/v1/sessions/"+created.SessionID)
		var snap game.Snapshot
		json.Unmarshal(w.Body.Bytes(), &snap)
		if len(snap.Bodies) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("click never reached the session")
}
