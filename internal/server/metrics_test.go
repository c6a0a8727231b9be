package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry/exporters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoyplaca/picoyplaca/internal/observability"
)

type exporterStub func(*http.Request) (*http.Response, error)

func (f exporterStub) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// withExporter installs a fake exporter and a proxy client served by stub.
func withExporter(t *testing.T, stub exporterStub) {
	t.Helper()
	originalClient := metricsProxyClient
	metricsProxyClient = &http.Client{Transport: stub}
	observability.PrometheusExporter = exporters.NewPrometheusExporter("picoyplaca", ":0")
	t.Cleanup(func() {
		metricsProxyClient = originalClient
		observability.PrometheusExporter = nil
	})
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error.Code
}

func TestMetricsHandlerRelaysExporterOutput(t *testing.T) {
	var forwardedAccept string
	withExporter(t, func(req *http.Request) (*http.Response, error) {
		forwardedAccept = req.Header.Get("Accept")
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("picoyplaca_app_evaluations_total{outcome=\"restricted\",source=\"http\"} 3\n")),
			Header:     make(http.Header),
		}
		resp.Header.Set("Content-Type", prometheusTextFormat)
		resp.Header.Set("Connection", "keep-alive")
		resp.Header.Set("X-Exporter", "gofulmen")
		return resp, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()
	MetricsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", forwardedAccept)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "gofulmen", rec.Header().Get("X-Exporter"))
	assert.Empty(t, rec.Header().Get("Connection"))
	assert.Contains(t, rec.Body.String(), "app_evaluations_total")
}

func TestMetricsHandlerDefaultsContentType(t *testing.T) {
	withExporter(t, func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("up 1\n")),
			Header:     make(http.Header),
		}, nil
	})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, prometheusTextFormat, rec.Header().Get("Content-Type"))
}

func TestMetricsHandlerReportsUnreachableExporter(t *testing.T) {
	withExporter(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", decodeErrorCode(t, rec))
}

func TestMetricsHandlerWithoutExporter(t *testing.T) {
	observability.PrometheusExporter = nil

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeErrorCode(t, rec))
}

func TestCopyEndToEndHeaders(t *testing.T) {
	src := http.Header{}
	src.Set("Content-Type", prometheusTextFormat)
	src.Set("Transfer-Encoding", "chunked")
	src.Set("Keep-Alive", "timeout=5")

	dst := http.Header{}
	copyEndToEndHeaders(dst, src)

	assert.Equal(t, prometheusTextFormat, dst.Get("Content-Type"))
	assert.Empty(t, dst.Get("Transfer-Encoding"))
	assert.Empty(t, dst.Get("Keep-Alive"))
}
