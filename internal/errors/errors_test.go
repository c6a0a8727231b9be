package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	"github.com/picoyplaca/picoyplaca/internal/server/middleware"
)

func TestEvaluationCode(t *testing.T) {
	_, plateErr := restriction.IsPermitted("SAXC", "2016-08-08", "16:00")
	_, dateErr := restriction.IsPermitted("SAXC-9", "2016-18-08", "16:00")
	_, timeErr := restriction.IsPermitted("SAXC-9", "2016-08-08", "25:00")

	assert.Equal(t, CodeInvalidPlate, EvaluationCode(plateErr))
	assert.Equal(t, CodeInvalidDate, EvaluationCode(dateErr))
	assert.Equal(t, CodeInvalidTime, EvaluationCode(timeErr))
	assert.Equal(t, "", EvaluationCode(stderrors.New("other")))
	assert.Equal(t, CodeInvalidPlate, EvaluationCode(fmt.Errorf("line 3: %w", plateErr)))
}

func TestFromEvaluationErrorUsesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDContextKey, "req-42")
	_, err := restriction.IsPermitted("", "2016-08-08", "16:00")

	envelope := FromEvaluationError(ctx, err)
	require.NotNil(t, envelope)
	assert.Equal(t, CodeInvalidPlate, envelope.Code)
	assert.Equal(t, err.Error(), envelope.Message)
	assert.Equal(t, "req-42", envelope.CorrelationID)
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromEnvelope(envelope))
}

func TestFromEvaluationErrorFallsBackToInternal(t *testing.T) {
	envelope := FromEvaluationError(context.Background(), stderrors.New("disk on fire"))
	assert.Equal(t, CodeInternal, envelope.Code)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromEnvelope(envelope))
	assert.Equal(t, "disk on fire", envelope.Context["wrapped_error"])
}

func TestEnsureEnvelope(t *testing.T) {
	original := NewNotFoundError("nope")
	assert.Same(t, original, EnsureEnvelope(original))

	assert.Equal(t, CodeInternal, EnsureEnvelope(nil).Code)
	assert.Equal(t, CodeInternal, EnsureEnvelope(stderrors.New("x")).Code)

	_, dateErr := restriction.IsPermitted("ABC-1", "2016-02-30", "08:00")
	assert.Equal(t, CodeInvalidDate, EnsureEnvelope(dateErr).Code)
}

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeInvalidPlate:       http.StatusBadRequest,
		CodeInvalidDate:        http.StatusBadRequest,
		CodeInvalidTime:        http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
		CodeExternalService:    http.StatusBadGateway,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestRespondWithError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/check", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDContextKey, "req-7"))
	rec := httptest.NewRecorder()

	_, err := restriction.IsPermitted("SAXC", "2016-08-08", "16:00")
	RespondWithError(rec, req, err)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeInvalidPlate, body.Error.Code)
	assert.Equal(t, "req-7", body.Error.RequestID)
	assert.Contains(t, body.Error.Message, "invalid plate")
}
