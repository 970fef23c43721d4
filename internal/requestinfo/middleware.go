// internal/requestinfo/middleware.go
//
// HTTP middleware that attaches *Info to every request.
//
/*
Context
--------
Enrich sits right after the request id middleware and before request
logging, so the access log line can carry browser, device, and country.
For every request it:

  1. Parses the User-Agent header and the Accept-Language list.
  2. Picks the client IP from X-Forwarded-For, X-Real-IP, or RemoteAddr.
  3. Looks the IP up in the GeoLite2 database when one is open.

Notes
-----
  • Look-ups are read-only, so the middleware is safe under concurrency.
  • Oxford commas, two spaces after periods.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Enrich wraps next and stores *Info in the request context.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &Info{
			UA:        ParseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       LookupGeo(ClientIP(r)),
			Path:      r.URL.Path,
			Timestamp: time.Now().UTC(),
		}
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), info)))
	})
}

// ClientIP returns the left-most parseable address from X-Forwarded-For,
// then X-Real-IP, then the host part of RemoteAddr.
func ClientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-Ip"))); ip != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
