// internal/widget/registry.go
//
// Widget registry and lookup helpers.
//
// A **Widget** is a reusable view fragment rendered inside a page.  Forms
// are the main producer: every loaded form definition registers a widget
// under its ID, and components may register their own fragments too.
//
// The key used for registration is `<component>/<widget>`, e.g.
// "auth/login", and must be returned by the widget's `ID` method.
//
// Template authors embed a widget with:
//
//	{{ widget "auth/login" (dict "token" .CSRF) }}
//
// Params are optional.  The view helper looks the widget up, invokes
// `Render`, and inserts the returned template.HTML.
package widget

import (
	"html/template"
	"sort"
	"sync"
)

// Widget represents a view fragment that can be embedded in any page.
//
// Render must be safe for concurrent use and must treat a nil params map as
// "no params".  Errors are returned, never written, so the caller decides
// how to surface them.
type Widget interface {
	ID() string
	Render(params map[string]any) (template.HTML, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register adds w.  A later registration under the same key replaces the
// earlier one, which is how override directories take effect.
func Register(w Widget) {
	mu.Lock()
	registry[w.ID()] = w
	mu.Unlock()
}

// Lookup returns the widget or nil.
func Lookup(key string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[key]
}

// Keys returns every registered key, sorted.
func Keys() []string {
	mu.RLock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}
