// internal/session/manager.go
//
// Cookie issuing, store lookup, and request-context plumbing.

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yanizio/nasabah/internal/cache"
	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/metrics"
)

// Options tune the manager.  Zero values fall back to the defaults below.
type Options struct {
	CookieName string
	IdleTTL    time.Duration
	Capacity   int
	Secure     bool // force the Secure attribute even without TLS
}

const (
	defaultCookie   = "nasabah_session"
	defaultTTL      = 30 * time.Minute
	defaultCapacity = 10_000
)

// Manager owns the session store.
type Manager struct {
	opts  Options
	store *cache.LRU[string, *Session]
	now   func() time.Time
}

// NewManager returns a ready manager.
func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = defaultCookie
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	m := &Manager{
		opts:  opts,
		store: cache.New[string, *Session](opts.Capacity),
		now:   time.Now,
	}
	m.store.OnEvict = func(string, *Session) { metrics.ActiveSessions.Dec() }
	return m
}

// Len reports how many sessions are held.
func (m *Manager) Len() int { return m.store.Len() }

// Load returns the browser's session, creating one (and setting the cookie)
// when the cookie is missing, unknown, or idle past the TTL.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	now := m.now()
	if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
		if s, ok := m.store.Get(c.Value); ok {
			if s.idleSince(now) <= m.opts.IdleTTL {
				s.touch(now)
				return s
			}
			m.store.Remove(c.Value)
			logger.FromContext(r.Context()).Debugw("session expired", "sid", shortID(c.Value))
		}
	}

	return m.issue(w, r, now)
}

// Renew moves the login record and pending notices of old onto a session
// with a fresh id, drops old from the store, and points the cookie at the
// new id.  Screen-local attributes stay behind.  Call it whenever the login
// state changes, so an id that was valid before the change is not after it.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request, old *Session) *Session {
	s := m.issue(w, r, m.now())

	old.mu.RLock()
	s.username, s.token = old.username, old.token
	old.mu.RUnlock()
	for _, n := range old.Flash.Drain() {
		s.Flash.Push(n.Kind, n.Text)
	}

	m.store.Remove(old.ID)
	logger.FromContext(r.Context()).Debugw("session renewed", "from", shortID(old.ID), "to", shortID(s.ID))
	return s
}

func (m *Manager) issue(w http.ResponseWriter, r *http.Request, now time.Time) *Session {
	s := newSession(uuid.NewString(), now)
	m.store.Add(s.ID, s)
	metrics.ActiveSessions.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

/*──────────────────────────── middleware ───────────────────────────────────*/

type ctxKey struct{}

// Middleware loads the session and stores it in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(w, r)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), s)))
	})
}

// WithContext returns a copy of ctx carrying s.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// RequireLogin redirects to /login unless the session flag is present.
// It must run after Middleware.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		if s == nil || !s.LoggedIn() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
