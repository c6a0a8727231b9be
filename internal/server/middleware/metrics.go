package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/observability"
)

// HTTP metric names emitted by RequestMetrics.
const (
	RequestsTotal      = "http_requests_total"
	RequestDuration    = "http_request_duration_ms"
	RequestSizeBytes   = "http_request_size_bytes"
	ResponseSizeBytes  = "http_response_size_bytes"
	RequestErrorsTotal = "http_errors_total"
)

// Fixed endpoint labels for requests chi did not route.
var knownEndpoints = map[string]string{
	"/":               "/",
	"/v1/check":       "/v1/check",
	"/v1/check/batch": "/v1/check/batch",
	"/v1/schedule":    "/v1/schedule",
	"/version":        "/version",
	"/metrics":        "/metrics",
	"/admin/signal":   "/admin/signal",
	"/health":         "/health/*",
	"/health/live":    "/health/*",
	"/health/ready":   "/health/*",
	"/health/startup": "/health/*",
}

// statusRecorder records the status code and body size a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// getEndpointPattern labels r by its chi route pattern, falling back to a
// fixed set of paths. Plates and other query values never reach a label.
func getEndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	if endpoint, ok := knownEndpoints[r.URL.Path]; ok {
		return endpoint
	}
	return "/unknown"
}

// RequestMetrics emits per-request counters, duration and sizes, then logs
// the request at debug level with its request ID.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sys := observability.TelemetrySystem
		if sys == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		requestSize := max(r.ContentLength, 0)

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		endpoint := getEndpointPattern(r)
		record(sys, r.Method, endpoint, rec, requestSize, duration)

		if logger := observability.ServerLogger; logger != nil {
			logger.Debug("HTTP request completed",
				zap.String("method", r.Method),
				zap.String("endpoint", endpoint),
				zap.Int("status", rec.status),
				zap.Duration("duration", duration),
				zap.Int64("request_size", requestSize),
				zap.Int64("response_size", rec.bytes),
				zap.String("request_id", GetRequestID(r.Context())),
			)
		}
	})
}

func record(sys *telemetry.System, method, endpoint string, rec *statusRecorder, requestSize int64, duration time.Duration) {
	status := strconv.Itoa(rec.status)
	route := map[string]string{"method": method, "endpoint": endpoint}
	withStatus := map[string]string{"method": method, "endpoint": endpoint, "status": status}

	_ = sys.Counter(RequestsTotal, 1, withStatus)
	_ = sys.Histogram(RequestDuration, duration, withStatus)
	_ = sys.Gauge(RequestSizeBytes, float64(requestSize), route)
	_ = sys.Gauge(ResponseSizeBytes, float64(rec.bytes), route)

	if rec.status < http.StatusBadRequest {
		return
	}
	errorType := "client_error"
	if rec.status >= http.StatusInternalServerError {
		errorType = "server_error"
	}
	_ = sys.Counter(RequestErrorsTotal, 1, map[string]string{
		"method":     method,
		"endpoint":   endpoint,
		"status":     status,
		"error_type": errorType,
	})
}
