package arena

import (
	"context"
	"log"
	"time"
)

// StartIdleReaper ends sessions that have had no viewers and no input for
// longer than idle. It checks every interval until ctx is done.
func StartIdleReaper(ctx context.Context, m *Manager, idle, interval time.Duration) {
	if m == nil || idle <= 0 || interval <= 0 {
		log.Println("[REAPER] Missing manager or durations; idle reaper not started")
		return
	}

	log.Printf("[REAPER] Idle reaper started (idle=%s interval=%s)", idle, interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[REAPER] Idle reaper stopping")
				return
			case now := <-ticker.C:
				if n := m.ReapIdle(now, idle); n > 0 {
					log.Printf("[REAPER] Reaped %d idle sessions (active=%d)", n, m.GetActiveSessionCount())
				}
			}
		}
	}()
}

// ReapIdle ends every session with no viewers whose last activity is older
// than idle, and returns how many were ended.
func (m *Manager) ReapIdle(now time.Time, idle time.Duration) int {
	// Collect candidates under read lock
	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.NumViewers() == 0 && now.Sub(s.LastActive()) >= idle {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	reaped := 0
	for _, id := range stale {
		s, err := m.GetSession(id)
		if err != nil {
			continue
		}
		// Re-check: a viewer may have attached meanwhile.
		if s.NumViewers() != 0 || now.Sub(s.LastActive()) < idle {
			continue
		}
		if err := m.EndSession(id); err == nil {
			log.Printf("[REAPER] Session %s idle since %s, ended", id, s.LastActive().Format(time.RFC3339))
			reaped++
		}
	}
	return reaped
}
