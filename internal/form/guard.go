package form

import "sync"

// Guard tracks which submissions are outstanding.  A key is held from the
// moment a submission starts its upstream call until that call settles.  The
// zero value is ready to use.
type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// Acquire marks key busy.  It returns false, and changes nothing, when key
// is already busy.
func (g *Guard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy == nil {
		g.busy = make(map[string]struct{})
	}
	if _, held := g.busy[key]; held {
		return false
	}
	g.busy[key] = struct{}{}
	return true
}

// Release frees key.  Releasing a free key is a no-op.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	delete(g.busy, key)
	g.mu.Unlock()
}

// Busy reports whether key is held.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.busy[key]
	return held
}
