package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latency per route pattern. Using the chi
// route pattern instead of the raw path keeps label cardinality bounded.
func Metrics(requests *prometheus.CounterVec, latency *prometheus.HistogramVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			requests.WithLabelValues(r.Method, pattern, strconv.Itoa(wrapped.statusCode)).Inc()
			latency.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		})
	}
}
