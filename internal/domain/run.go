package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStats accumulates aggregate counters for one payout run.
// TotalHolders counts every filtered holder, including ones whose payout
// quantized to zero. TotalDistributed grows only on successful attempts.
type RunStats struct {
	TotalHolders     int
	SuccessCount     int
	FailureCount     int
	TotalDistributed decimal.Decimal
	StartedAt        time.Time
	EndedAt          time.Time
}

// NewRunStats returns stats with a zero-valued distributed total.
func NewRunStats(startedAt time.Time) RunStats {
	return RunStats{
		TotalDistributed: decimal.Zero,
		StartedAt:        startedAt,
	}
}

// Duration is the wall-clock length of the run.
func (s RunStats) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// RunRecord is the persisted header of one payout run.
type RunRecord struct {
	RunID  string
	Token  string
	DryRun bool
	Stats  RunStats
}

// RunAggregate is a flattened per-run analytics row kept in the
// long-horizon history store. Float fields are lossy; the authoritative
// amounts live in the attempt records and the audit file.
type RunAggregate struct {
	RunID            string
	Token            string
	DryRun           bool
	TotalHolders     int
	SuccessCount     int
	FailureCount     int
	TotalDistributed float64
	StartedAt        time.Time
	DurationMs       int64
}

// AggregateFromRecord flattens a run record into its analytics row.
func AggregateFromRecord(r *RunRecord) *RunAggregate {
	return &RunAggregate{
		RunID:            r.RunID,
		Token:            r.Token,
		DryRun:           r.DryRun,
		TotalHolders:     r.Stats.TotalHolders,
		SuccessCount:     r.Stats.SuccessCount,
		FailureCount:     r.Stats.FailureCount,
		TotalDistributed: r.Stats.TotalDistributed.InexactFloat64(),
		StartedAt:        r.Stats.StartedAt,
		DurationMs:       r.Stats.Duration().Milliseconds(),
	}
}
