package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// Summary is the derived snapshot of one run's stats. Computing it never
// mutates the underlying stats.
type Summary struct {
	TotalHolders       int
	SuccessCount       int
	FailureCount       int
	TotalDistributed   decimal.Decimal
	SuccessRate        float64
	AveragePayout      decimal.Decimal
	AvgAttemptDuration time.Duration
	Duration           time.Duration
}

// Summarize computes derived metrics from accumulated run stats. Denominators
// are clamped to 1 so an empty run yields zeros instead of dividing by zero.
func Summarize(stats domain.RunStats) Summary {
	holders := maxInt(stats.TotalHolders, 1)
	successes := maxInt(stats.SuccessCount, 1)
	duration := stats.Duration()

	return Summary{
		TotalHolders:       stats.TotalHolders,
		SuccessCount:       stats.SuccessCount,
		FailureCount:       stats.FailureCount,
		TotalDistributed:   stats.TotalDistributed,
		SuccessRate:        float64(stats.SuccessCount) / float64(holders),
		AveragePayout:      stats.TotalDistributed.Div(decimal.NewFromInt(int64(holders))),
		AvgAttemptDuration: duration / time.Duration(successes),
		Duration:           duration,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
