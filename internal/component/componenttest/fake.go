package componenttest

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Fake is a scripted upstream API that counts the calls it receives.
type Fake struct {
	mux   *http.ServeMux
	calls atomic.Int32

	mu   sync.Mutex
	auth []string
}

// NewFake returns a Fake with no routes; unknown paths answer 404.
func NewFake() *Fake { return &Fake{mux: http.NewServeMux()} }

// Handle scripts pattern ("GET /profil", "/login", ...).
func (f *Fake) Handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()
		h(w, r)
	})
}

// Calls reports how many scripted requests arrived.
func (f *Fake) Calls() int { return int(f.calls.Load()) }

// Authorization returns the Authorization header of every call, in order.
func (f *Fake) Authorization() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

func (f *Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) { f.mux.ServeHTTP(w, r) }
