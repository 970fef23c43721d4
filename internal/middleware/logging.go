// internal/middleware/logging.go
//
// Request logging.
//
// RequestLog derives a request-scoped logger carrying the chi request id,
// stores it in the context (logger.FromContext picks it up downstream), and
// writes one access line when the handler returns.  It runs after
// chi's RequestID and requestinfo.Enrich.

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/nasabah/internal/logger"
	"github.com/yanizio/nasabah/internal/requestinfo"
)

// RequestLog logs method, path, status, duration, and client hints.
func RequestLog(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := base
			if id := chimw.GetReqID(r.Context()); id != "" {
				l = l.With("req_id", id)
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					"browser", info.UA.Browser,
					"device", info.UA.Device,
					"bot", info.UA.IsBot,
					"country", info.Geo.CountryISO,
				)
			}
			if status >= 500 {
				l.Warnw("request", fields...)
				return
			}
			l.Infow("request", fields...)
		})
	}
}
