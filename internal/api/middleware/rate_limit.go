package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ayo6706/banking-agent/internal/api/problem"
	"github.com/go-chi/httprate"
)

// PublicRateLimiter caps requests per client IP at rps per second.
func PublicRateLimiter(rps int) func(http.Handler) http.Handler {
	if rps < 1 {
		rps = 1
	}
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(1))
			problem.Write(w, r, http.StatusTooManyRequests,
				problem.Type("rate-limited"), "",
				fmt.Sprintf("More than %d requests per second from this client", rps))
		}),
	)
}
