// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  The root router initialises
// every registered component with the shared Deps, in name order, and then
// lets it add its routes inside its own chi group, so middleware a
// component installs (RequireLogin, for example) never leaks into another.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/nasabah/internal/api"
	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/session"
	"github.com/yanizio/nasabah/internal/view"
)

// Deps is everything a component may use.  All fields are required.
type Deps struct {
	API      *api.Client
	Sessions *session.Manager
	Forms    *form.Controller
	View     *view.Engine
	Log      *zap.SugaredLogger
}

// Initializer is called once, before Routes.  Components mount their
// templates here and keep the Deps they need.
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Routes adds page endpoints to r, e.g.
//
//	r.Get("/login", c.getLogin)
//	r.Post("/login", c.postLogin)
type Component interface {
	Name() string
	Routes(r chi.Router)
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Registering a
// second component under the same name replaces the first.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// MountAll initialises cs and adds their routes to r.
func MountAll(r chi.Router, d Deps, cs ...Component) error {
	for _, c := range cs {
		if err := c.Init(d); err != nil {
			return fmt.Errorf("component %s: init: %w", c.Name(), err)
		}
		r.Group(c.Routes)
		d.Log.Debugw("component mounted", "component", c.Name())
	}
	return nil
}
