// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed template sets.
//
// Public helpers
// --------------
//   - Mount    – register a component's embedded templates.
//   - NewPage  – build the per-request page model.
//   - Render   – execute layout plus page and write the result.
//
// Lookup precedence (first hit wins):
//   1. <ui.override_dir>/components/<comp>/templates/<name>.html
//   2. the component's embedded templates/<name>.html
//
// The layout follows the same rule: <ui.override_dir>/layout.html first,
// then the embedded templates/layout.html.  Page files define a "content"
// template, the layout executes it.  Files whose name starts with "_" in the
// component's template directory are parsed into every page of that
// component, so shared partials ({{ template "course_row" . }}) work.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/yanizio/nasabah/internal/cache"
	"github.com/yanizio/nasabah/internal/logger"
)

//go:embed templates/*.html
var layoutFS embed.FS

//go:embed static
var staticFS embed.FS

// ErrNotFound is returned when no source provides the requested template.
var ErrNotFound = errors.New("view: template not found")

// Options configures an Engine.
type Options struct {
	Title       string // site title, appended to every <title>
	OverrideDir string // optional directory of replacement templates
	CacheSize   int    // parsed sets kept; 0 means 256
	NoCache     bool   // re-parse on every render, for template work
}

// Engine renders component pages inside the shared layout.
type Engine struct {
	opts Options

	mu      sync.RWMutex
	sources map[string]fs.FS

	sets *cache.LRU[string, *template.Template]
}

// New returns an Engine with no components mounted.
func New(opts Options) *Engine {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	return &Engine{
		opts:    opts,
		sources: make(map[string]fs.FS),
		sets:    cache.New[string, *template.Template](opts.CacheSize),
	}
}

// Mount registers fsys as the template source of comp.  fsys holds
// <name>.html files at its root.  Mounting again replaces the source and
// drops every cached set.
func (e *Engine) Mount(comp string, fsys fs.FS) {
	e.mu.Lock()
	e.sources[comp] = fsys
	e.mu.Unlock()
	e.sets.Purge()
}

// Static serves the embedded stylesheet and images under /static/.
func (e *Engine) Static() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Render executes page name of comp with p and writes it with status 200.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, comp, name string, p *Page) {
	e.RenderStatus(w, r, http.StatusOK, comp, name, p)
}

// RenderStatus is Render with an explicit status code.  The page is
// buffered, so a template error still yields a clean 500.
func (e *Engine) RenderStatus(w http.ResponseWriter, r *http.Request, status int, comp, name string, p *Page) {
	var buf bytes.Buffer
	if err := e.Execute(&buf, comp, name, p); err != nil {
		logger.FromContext(r.Context()).Errorw("render failed", "component", comp, "template", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Execute renders into buf without touching an http.ResponseWriter.
func (e *Engine) Execute(buf *bytes.Buffer, comp, name string, p *Page) error {
	t, err := e.load(comp, name)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(buf, "layout", p)
}

//
// internal: load
//

func (e *Engine) load(comp, name string) (*template.Template, error) {
	key := comp + "::" + name
	if !e.opts.NoCache {
		if t, ok := e.sets.Get(key); ok {
			return t, nil
		}
	}

	e.mu.RLock()
	src := e.sources[comp]
	e.mu.RUnlock()

	t := template.New("layout").Funcs(funcMap())

	layout, err := e.read(nil, "layout.html", layoutFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	if _, err := t.Parse(layout); err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}

	if src != nil {
		partials, _ := fs.Glob(src, "_*.html")
		for _, p := range partials {
			raw, err := fs.ReadFile(src, p)
			if err != nil {
				return nil, err
			}
			if _, err := t.New(p).Parse(string(raw)); err != nil {
				return nil, fmt.Errorf("view: parse %s/%s: %w", comp, p, err)
			}
		}
	}

	page, err := e.read([]string{"components", comp, "templates"}, name+".html", src, name+".html")
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s", err, comp, name)
	}
	if _, err := t.New(name).Parse(page); err != nil {
		return nil, fmt.Errorf("view: parse %s/%s: %w", comp, name, err)
	}

	if !e.opts.NoCache {
		e.sets.Add(key, t)
	}
	return t, nil
}

// read returns the override file under OverrideDir/dir/file when present,
// otherwise fallback from fsys.
func (e *Engine) read(dir []string, file string, fsys fs.FS, fallback string) (string, error) {
	if e.opts.OverrideDir != "" {
		p := filepath.Join(append(append([]string{e.opts.OverrideDir}, dir...), file)...)
		if raw, err := os.ReadFile(p); err == nil {
			return string(raw), nil
		}
	}
	if fsys == nil {
		return "", ErrNotFound
	}
	raw, err := fs.ReadFile(fsys, path.Clean(fallback))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	return string(raw), err
}
