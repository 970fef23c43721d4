// internal/server/router.go
//
// Root handler assembly.
//
// Context
// -------
// NewRouter stacks the cross-cutting middleware once and then lets every
// registered component add its own routes.  Order matters:
//
//  1. chi RequestID and Recoverer.
//  2. requestinfo.Enrich, so the access log can report browser, device,
//     and country.
//  3. RequestLog, then ForceHTTPS, so redirects are logged too.
//  4. Security headers.
//
// `/static/*`, `/debug`, and the metrics endpoint sit outside the session
// layer; they never mint a cookie.  Component routes run inside it.
//
// Notes
// -----
//   • Form override files are applied after MountAll, because components
//     register their embedded defaults during Init.
//   • Oxford commas, two spaces after periods.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/nasabah/internal/component"
	"github.com/yanizio/nasabah/internal/form"
	"github.com/yanizio/nasabah/internal/middleware"
	"github.com/yanizio/nasabah/internal/requestinfo"
)

// RouterOptions select the optional pieces of the root handler.
type RouterOptions struct {
	ForceHTTPS   bool
	MetricsPath  string   // empty disables the endpoint
	Debug        bool     // mount the request-info echo at /debug
	FormOverride []string // base dirs holding components/<comp>/forms/*.yaml
}

// NewRouter builds the portal handler from d and cs.
func NewRouter(d component.Deps, opts RouterOptions, cs ...component.Component) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.RequestLog(d.Log))
	r.Use(middleware.ForceHTTPS(opts.ForceHTTPS))
	r.Use(middleware.Security)

	r.Handle("/static/*", d.View.Static())
	if opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, promhttp.Handler())
	}
	if opts.Debug {
		r.Method(http.MethodGet, "/debug", requestinfo.DebugHandler())
	}

	var mountErr error
	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)
		mountErr = component.MountAll(r, d, cs...)
	})
	if mountErr != nil {
		return nil, mountErr
	}

	if len(opts.FormOverride) > 0 {
		if err := form.RegisterForms(opts.FormOverride); err != nil {
			return nil, fmt.Errorf("server: form overrides: %w", err)
		}
	}
	return r, nil
}
