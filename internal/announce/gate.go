// Package announce rate limits a one-off announcement to once per window.
package announce

import (
	"sync"
	"time"
)

// Gate lets one caller through per window. The check and the update of the
// last announcement happen under one lock, so concurrent triggers inside a
// window yield a single announcement.
type Gate struct {
	window time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewGate(window time.Duration) *Gate {
	return &Gate{window: window}
}

// TryAcquire reports whether an announcement may happen at now and, if so,
// records it.
func (g *Gate) TryAcquire(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() && now.Sub(g.last) < g.window {
		return false
	}
	g.last = now
	return true
}

// Last returns the time of the most recent announcement.
func (g *Gate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
