// debug.go serves /debug: a JSON echo of what Enrich saw for the current
// request.  The router mounts it only when http.debug_endpoint is on.
package requestinfo

import (
	"encoding/json"
	"net/http"
)

// DebugHandler writes the request's Info, client address, and raw headers
// that fed them.
func DebugHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{
			"host":      r.Host,
			"path":      r.URL.Path,
			"query":     r.URL.RawQuery,
			"ip":        ClientIP(r),
			"ua":        r.UserAgent(),
			"lang":      r.Header.Get("Accept-Language"),
			"info":      FromContext(r.Context()),
			"forwarded": r.Header.Get("X-Forwarded-For"),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	})
}
