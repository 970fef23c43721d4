// internal/session/session.go
//
// Server-side browser sessions.
//
// Context
//   The portal needs one place that answers "is this browser logged in, as
//   whom, and with which upstream token".  A random UUID cookie keys an
//   in-memory store; the cookie carries nothing else.  Entries idle for
//   longer than the TTL are dropped lazily on the next lookup, and the LRU
//   bound caps memory when many anonymous browsers come and go.
//
//   Besides the login record a session carries screen-local attributes
//   (the fetched course catalog, the profile id being edited, the course
//   selection) and a flash Tray that survives exactly one redirect.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"sync"
	"time"

	"github.com/yanizio/nasabah/internal/message"
)

// Session is the state shared by all requests from one browser.  Methods are
// safe for concurrent use.
type Session struct {
	ID string

	mu       sync.RWMutex
	username string
	token    string
	attrs    map[string]any
	touched  time.Time

	// Flash holds notices for the next rendered page.
	Flash message.Tray
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, attrs: make(map[string]any), touched: now}
}

// FlagOnly is stored as the token when the login reply carried none.  The
// browser counts as logged in but no Authorization header is sent.
const FlagOnly = "flag-only"

// Token returns the stored login token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken records a successful login.
func (s *Session) SetToken(username, token string) {
	s.mu.Lock()
	s.username, s.token = username, token
	s.mu.Unlock()
}

// Clear logs the browser out and forgets every screen-local attribute.
// Pending flash notices are kept so the logout notice can be shown.
func (s *Session) Clear() {
	s.mu.Lock()
	s.username, s.token = "", ""
	s.attrs = make(map[string]any)
	s.mu.Unlock()
}

// Bearer returns the credential to send upstream, "" for FlagOnly logins.
func (s *Session) Bearer() string {
	if t := s.Token(); t != FlagOnly {
		return t
	}
	return ""
}

// LoggedIn reports whether a login record is present.
func (s *Session) LoggedIn() bool { return s.Token() != "" }

// Username returns the name given at login.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Set stores a screen-local attribute.
func (s *Session) Set(key string, v any) {
	s.mu.Lock()
	s.attrs[key] = v
	s.mu.Unlock()
}

// Delete removes an attribute.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	delete(s.attrs, key)
	s.mu.Unlock()
}

func (s *Session) get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.attrs[key]
	return v, ok
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.touched)
}

// Get returns the attribute stored under key when it has type T.
func Get[T any](s *Session, key string) (T, bool) {
	var zero T
	v, ok := s.get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// GetOrInit returns the attribute under key, storing init() first when it is
// missing or of another type.
func GetOrInit[T any](s *Session, key string, init func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.attrs[key].(T); ok {
		return v
	}
	v := init()
	s.attrs[key] = v
	return v
}
