package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoyplaca/picoyplaca/internal/config"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	apperrors "github.com/picoyplaca/picoyplaca/internal/errors"
	"github.com/picoyplaca/picoyplaca/internal/server/handlers"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: time.Second,
		MaxBatchSize:    10,
	}
}

func serve(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New(testConfig(), restriction.DefaultSchedule())

	rec := serve(t, srv, http.MethodGet, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)

	rec = serve(t, srv, http.MethodDelete, "/v1/check")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerRoutesCheck(t *testing.T) {
	srv := New(testConfig(), restriction.DefaultSchedule())

	rec := serve(t, srv, http.MethodGet, "/v1/check?plate=HGF-125&date=2016-08-10&time=16:00")
	require.Equal(t, http.StatusOK, rec.Code)

	var decision restriction.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decision))
	assert.False(t, decision.Permitted)
	assert.Equal(t, restriction.Wednesday, decision.Weekday)

	rec = serve(t, srv, http.MethodGet, "/v1/check?plate=SDJHH&date=2016-08-10&time=16:00")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeInvalidPlate, body.Error.Code)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.Error.RequestID)
}

func TestServerRoutesScheduleAndVersion(t *testing.T) {
	srv := New(testConfig(), restriction.DefaultSchedule())

	assert.Equal(t, http.StatusOK, serve(t, srv, http.MethodGet, "/v1/schedule").Code)
	assert.Equal(t, http.StatusOK, serve(t, srv, http.MethodGet, "/version").Code)
}

func TestServerHealthUsesScheduleChecker(t *testing.T) {
	handlers.InitHealthManager("test")
	srv := New(testConfig(), restriction.DefaultSchedule())
	handlers.GetHealthManager().RegisterChecker("schedule", srv.Evaluation())

	rec := serve(t, srv, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Checks["schedule"])
}

func TestServerServeAndShutdown(t *testing.T) {
	srv := New(testConfig(), restriction.DefaultSchedule())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	url := "http://" + ln.Addr().String() + "/v1/check?plate=HGF-121&date=2016-08-10&time=12:00"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
