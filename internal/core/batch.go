package core

import (
	"errors"
	"time"

	"github.com/samber/lo"

	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
)

// Outcome labels a single evaluation for reporting and metrics.
type Outcome string

const (
	OutcomePermitted    Outcome = "permitted"
	OutcomeRestricted   Outcome = "restricted"
	OutcomeInvalidPlate Outcome = "invalid_plate"
	OutcomeInvalidDate  Outcome = "invalid_date"
	OutcomeInvalidTime  Outcome = "invalid_time"
	OutcomeError        Outcome = "error"
)

// OutcomeOf classifies an evaluation result.
func OutcomeOf(decision restriction.Decision, err error) Outcome {
	switch {
	case err == nil && decision.Permitted:
		return OutcomePermitted
	case err == nil:
		return OutcomeRestricted
	case errors.Is(err, restriction.ErrInvalidPlate):
		return OutcomeInvalidPlate
	case errors.Is(err, restriction.ErrInvalidDate):
		return OutcomeInvalidDate
	case errors.Is(err, restriction.ErrInvalidTime):
		return OutcomeInvalidTime
	default:
		return OutcomeError
	}
}

// BatchEntry is the result for one query. Exactly one of Decision and Error
// is set.
type BatchEntry struct {
	Query    restriction.Query     `json:"query"`
	Outcome  Outcome               `json:"outcome"`
	Decision *restriction.Decision `json:"decision,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// BatchResult captures the evaluation of a list of queries.
type BatchResult struct {
	Entries     []BatchEntry `json:"entries"`
	Total       int          `json:"total"`
	Permitted   int          `json:"permitted"`
	Restricted  int          `json:"restricted"`
	Failed      int          `json:"failed"`
	CompletedAt time.Time    `json:"completed_at"`
}

// Evaluate evaluates one query into a batch entry. The evaluation error,
// if any, is returned as well as recorded in the entry.
func Evaluate(schedule restriction.Schedule, q restriction.Query) (BatchEntry, error) {
	decision, err := schedule.Evaluate(q)
	entry := BatchEntry{Query: q, Outcome: OutcomeOf(decision, err)}
	if err != nil {
		entry.Error = err.Error()
		return entry, err
	}
	entry.Decision = &decision
	return entry, nil
}

// EvaluateBatch evaluates every query against schedule. A query that fails
// to evaluate is recorded with its error and counted as failed, never as
// permitted or restricted.
func EvaluateBatch(schedule restriction.Schedule, queries []restriction.Query) *BatchResult {
	return Summarize(lo.Map(queries, func(q restriction.Query, _ int) BatchEntry {
		entry, _ := Evaluate(schedule, q)
		return entry
	}))
}

// Summarize tallies entries into a BatchResult.
func Summarize(entries []BatchEntry) *BatchResult {
	if entries == nil {
		entries = []BatchEntry{}
	}
	counts := lo.CountValuesBy(entries, func(e BatchEntry) Outcome { return e.Outcome })
	permitted := counts[OutcomePermitted]
	restricted := counts[OutcomeRestricted]

	return &BatchResult{
		Entries:     entries,
		Total:       len(entries),
		Permitted:   permitted,
		Restricted:  restricted,
		Failed:      len(entries) - permitted - restricted,
		CompletedAt: time.Now().UTC(),
	}
}
