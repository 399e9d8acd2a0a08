package metrics

import (
	"regexp"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginsTotal counts login attempts by outcome (success, invalid_credentials, error).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RegistrationsTotal counts registration attempts by outcome (success, duplicate, error).
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	// TokenRejectionsTotal counts tokens rejected by the auth middleware by reason
	// (missing, invalid, expired).
	TokenRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Total number of bearer tokens rejected by reason",
		},
		[]string{"reason"},
	)

	// CapsulesOpenable is the number of capsules whose open_at has passed.
	// Refreshed hourly by the scheduler.
	CapsulesOpenable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "capsules_openable_total",
			Help: "Number of time capsules past their open_at date",
		},
	)
)

// Hex path segments (uuids without dashes would not match; uuid segments do).
var idPathSegment = regexp.MustCompile(`/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(/|$)`)

func init() {
	prometheus.MustRegister(RequestDuration, RequestTotal, LoginsTotal, RegistrationsTotal, TokenRejectionsTotal, CapsulesOpenable)
}

// NormalizePath reduces label cardinality by replacing uuid path segments with {id}.
// E.g. /api/timeCapsules/9b2f...-... -> /api/timeCapsules/{id}.
func NormalizePath(path string) string {
	return idPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for one HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}
