package arena

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionInfo is the public listing of a running session.
type SessionInfo struct {
	ID         string    `json:"id"`
	Viewers    int       `json:"viewers"`
	LastActive time.Time `json:"last_active"`
}

// Manager keeps every running session by ID.
type Manager struct {
	ctx       context.Context
	opts      Options
	publisher Publisher

	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager creates a manager whose sessions run until ctx is cancelled.
// pub may be nil.
func NewManager(ctx context.Context, opts Options, pub Publisher) *Manager {
	return &Manager{
		ctx:       ctx,
		opts:      opts,
		publisher: pub,
		sessions:  make(map[string]*Session),
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	return "sess_" + generateToken(8)
}

// CreateSession starts a new session goroutine and returns it.
func (m *Manager) CreateSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateSessionID()
	for _, exists := m.sessions[id]; exists; _, exists = m.sessions[id] {
		id = generateSessionID()
	}

	s := NewSession(id, m.opts, m.publisher)
	m.sessions[id] = s
	go s.Run(m.ctx)

	log.Printf("[ARENA] session %s created (active=%d)", id, len(m.sessions))
	return s
}

// GetSession returns the session with the given ID.
func (m *Manager) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// EndSession stops and forgets a session.
func (m *Manager) EndSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Stop()
	log.Printf("[ARENA] session %s ended", id)
	return nil
}

// ListSessions returns every session sorted by ID.
func (m *Manager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SessionInfo, 0, len(m.sessions))
	for id, s := range m.sessions {
		out = append(out, SessionInfo{ID: id, Viewers: s.NumViewers(), LastActive: s.LastActive()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetActiveSessionCount returns the number of running sessions.
func (m *Manager) GetActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StopAll stops every session. Used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}

// Options returns the options sessions are created with.
func (m *Manager) Options() Options {
	return m.opts
}
