package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/core"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	apperrors "github.com/picoyplaca/picoyplaca/internal/errors"
	"github.com/picoyplaca/picoyplaca/internal/metrics"
	"github.com/picoyplaca/picoyplaca/internal/observability"
	"github.com/picoyplaca/picoyplaca/internal/output"
)

const metricsSource = "http"

// maxBatchBodyBytes caps the batch request body independently of the
// entry limit so an oversized payload is rejected before decoding.
const maxBatchBodyBytes = 1 << 20

// EvaluationHandlers serves plate checks against a fixed schedule.
type EvaluationHandlers struct {
	schedule     restriction.Schedule
	maxBatchSize int
}

// NewEvaluationHandlers binds the handlers to schedule. maxBatchSize bounds
// the number of queries accepted by CheckBatch.
func NewEvaluationHandlers(schedule restriction.Schedule, maxBatchSize int) *EvaluationHandlers {
	if maxBatchSize < 1 {
		maxBatchSize = 1
	}
	return &EvaluationHandlers{schedule: schedule, maxBatchSize: maxBatchSize}
}

// Check handles GET /v1/check?plate=&date=&time=.
func (h *EvaluationHandlers) Check(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var missing []string
	for _, name := range []string{"plate", "date", "time"} {
		if !values.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		envelope := apperrors.NewInvalidInputError("missing query parameter: " + strings.Join(missing, ", "))
		envelope = envelope.WithDetails(map[string]interface{}{"missing": missing})
		respondWithError(w, r, envelope)
		return
	}

	query := restriction.Query{
		Plate: values.Get("plate"),
		Date:  values.Get("date"),
		Time:  values.Get("time"),
	}
	decision, err := h.schedule.Evaluate(query)
	metrics.RecordEvaluation(metricsSource, string(core.OutcomeOf(decision, err)))
	if err != nil {
		respondWithError(w, r, apperrors.FromEvaluationError(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// CheckBatch handles POST /v1/check/batch with a JSON array of queries.
// Individual failures are reported per entry; the request itself only
// fails on a malformed or oversized body.
func (h *EvaluationHandlers) CheckBatch(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBatchBodyBytes)
	defer func() { _ = body.Close() }()

	var queries []restriction.Query
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&queries); err != nil {
		if err == io.EOF {
			respondWithError(w, r, apperrors.NewInvalidInputError("request body must be a JSON array of queries"))
			return
		}
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "request body must be a JSON array of queries"))
		return
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		respondWithError(w, r, apperrors.NewInvalidInputError("request body must contain a single JSON array"))
		return
	}
	if len(queries) == 0 {
		respondWithError(w, r, apperrors.NewInvalidInputError("batch contains no queries"))
		return
	}
	if len(queries) > h.maxBatchSize {
		envelope := apperrors.NewInvalidInputError(fmt.Sprintf("batch of %d queries exceeds the limit of %d", len(queries), h.maxBatchSize))
		envelope = envelope.WithDetails(map[string]interface{}{
			"size":  len(queries),
			"limit": h.maxBatchSize,
		})
		respondWithError(w, r, envelope)
		return
	}

	result := core.EvaluateBatch(h.schedule, queries)
	metrics.RecordBatchSize(metricsSource, result.Total)
	for _, entry := range result.Entries {
		metrics.RecordEvaluation(metricsSource, string(entry.Outcome))
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Debug("Batch evaluated",
			zap.Int("total", result.Total),
			zap.Int("permitted", result.Permitted),
			zap.Int("restricted", result.Restricted),
			zap.Int("failed", result.Failed))
	}

	writeJSON(w, http.StatusOK, result)
}

// Schedule handles GET /v1/schedule.
func (h *EvaluationHandlers) Schedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, output.NewScheduleView(h.schedule))
}

// CheckHealth validates the bound schedule so readiness fails on a broken
// schedule instead of serving wrong answers.
func (h *EvaluationHandlers) CheckHealth(_ context.Context) error {
	return h.schedule.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
