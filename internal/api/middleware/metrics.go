package middleware

import (
	"net/http"
	"time"

	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware observes request latency labelled by the matched chi
// route, so /v1/tools/{name} is one series rather than one per tool.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := newRecorder(w)

		next.ServeHTTP(rr, r)

		observability.ObserveHTTP(r.Method, routePattern(r), rr.status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return "unmatched"
	}
	if pattern := rc.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
