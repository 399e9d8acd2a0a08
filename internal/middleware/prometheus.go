package middleware

import (
	"net/http"
	"time"

	"github.com/capsulehq/capsule-api/internal/metrics"
)

// Prometheus records request duration and count for each request. Mount after
// recovery and request ID so the recorded status reflects the actual response.
// Scrapes of /metrics itself are not recorded.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)
		if r.URL.Path == "/metrics" {
			return
		}
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		metrics.RecordRequest(r.Method, path, wrap.status, time.Since(start).Seconds())
	})
}
