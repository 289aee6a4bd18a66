package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront-backend/pkg/metrics"
)

// Metrics records per-route request counts and latency. It runs inside the
// chi routing context so the route pattern is available, not the raw path.
func Metrics(httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpMetrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			route := chi.RouteContext(r.Context()).RoutePattern()
			httpMetrics.Observe(r.Method, route, rec.status, time.Since(start))
		})
	}
}
