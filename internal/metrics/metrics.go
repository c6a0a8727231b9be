// Package metrics emits application counters through the telemetry system.
// Every recorder is a no-op until observability.InitMetrics has run, so CLI
// commands can call them freely.
package metrics

import (
	"strconv"
	"time"

	"github.com/picoyplaca/picoyplaca/internal/observability"
)

const (
	EvaluationsTotal    = "app_evaluations_total"
	BatchSizeName       = "app_batch_size"
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"

	ErrorsTotalName      = "errors_total"
	PanicsTotalName      = "panics_total"
	ErrorsByEndpointName = "errors_by_endpoint"
)

func counter(name string, labels map[string]string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(name, 1, labels)
}

func gauge(name string, value float64, labels map[string]string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(name, value, labels)
}

// RecordEvaluation counts one plate evaluation. source names the surface
// (cli, batch, http) and outcome is one of the core outcome labels.
func RecordEvaluation(source, outcome string) {
	counter(EvaluationsTotal, map[string]string{
		"source":  source,
		"outcome": outcome,
	})
}

// RecordBatchSize records the number of queries in the latest batch.
func RecordBatchSize(source string, size int) {
	gauge(BatchSizeName, float64(size), map[string]string{"source": source})
}

// RecordHealthCheck records a health check run and its duration.
func RecordHealthCheck(check string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	counter(HealthCheckTotal, map[string]string{"check": check, "status": status})
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(HealthCheckDuration, duration, map[string]string{"check": check})
	}
}

// SetServerStartTime records the server start as a Unix timestamp.
func SetServerStartTime(ts time.Time) {
	gauge(ServerStartTime, float64(ts.Unix()), nil)
}

// RecordError counts an error response by code and HTTP status.
func RecordError(errorCode string, httpStatus int) {
	counter(ErrorsTotalName, map[string]string{
		"error_code":  errorCode,
		"http_status": strconv.Itoa(httpStatus),
	})
}

// RecordPanic counts a recovered panic.
func RecordPanic() {
	counter(PanicsTotalName, nil)
}

// RecordErrorByEndpoint counts an error response by route.
func RecordErrorByEndpoint(endpoint string, errorCode string) {
	counter(ErrorsByEndpointName, map[string]string{
		"endpoint":   endpoint,
		"error_code": errorCode,
	})
}
