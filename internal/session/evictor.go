// evictor.go sweeps idle sessions.  Load already refuses a session that sat
// idle past the TTL, but it is only removed when that browser returns.  The
// sweeper drops the rest every interval so abandoned logins do not linger
// until capacity pressure pushes them out.
package session

import (
	"context"
	"time"

	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/metrics"
)

// Sweep removes every session idle longer than the TTL and reports how many
// went.
func (m *Manager) Sweep() int {
	now := m.now()
	n := 0
	for _, s := range m.store.Snapshot() {
		if s.idleSince(now) > m.opts.IdleTTL && m.store.Remove(s.ID) {
			n++
		}
	}
	if n > 0 {
		metrics.SessionEvictions.Add(float64(n))
	}
	return n
}

// RunEvictor calls Sweep every interval until ctx is done.
func (m *Manager) RunEvictor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = m.opts.IdleTTL / 2
	}
	t := time.NewTicker(every)
	defer t.Stop()
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Debugw("idle sessions evicted", "count", n, "live", m.Len())
			}
		}
	}
}
