package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// RenderHolderTable renders the filtered holders with their computed payments
// as a Markdown table, sorted by holding descending.
func RenderHolderTable(decisions []domain.PayoutDecision) string {
	sorted := make([]domain.PayoutDecision, len(decisions))
	copy(sorted, decisions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Holder.Balance > sorted[j].Holder.Balance
	})

	var sb strings.Builder
	sb.WriteString("| Account | Holding | Payment |\n")
	sb.WriteString("|---------|---------|---------|\n")
	for _, d := range sorted {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n",
			d.Holder.Account, d.Holder.Balance, d.Amount.StringFixed(4)))
	}

	return sb.String()
}

// RenderRunSummary renders one run's summary as Markdown.
func RenderRunSummary(r *domain.RunRecord) string {
	s := Summarize(r.Stats)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Payout Run %s\n\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Token: %s | Dry run: %t\n\n", r.Token, r.DryRun))
	sb.WriteString(fmt.Sprintf("Started: %s\n\n", r.Stats.StartedAt.UTC().Format(time.RFC3339)))

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Holders | %d |\n", s.TotalHolders))
	sb.WriteString(fmt.Sprintf("| Successes | %d |\n", s.SuccessCount))
	sb.WriteString(fmt.Sprintf("| Failures | %d |\n", s.FailureCount))
	sb.WriteString(fmt.Sprintf("| Total Distributed | %s |\n", s.TotalDistributed.StringFixed(4)))
	sb.WriteString(fmt.Sprintf("| Success Rate | %.4f |\n", s.SuccessRate))
	sb.WriteString(fmt.Sprintf("| Average Payout | %s |\n", s.AveragePayout.StringFixed(4)))
	sb.WriteString(fmt.Sprintf("| Avg Attempt Duration | %s |\n", s.AvgAttemptDuration))
	sb.WriteString(fmt.Sprintf("| Run Duration | %s |\n", s.Duration))
	sb.WriteString("\n")

	return sb.String()
}

// RenderHistory renders long-horizon run aggregates as a Markdown table,
// newest first.
func RenderHistory(aggs []*domain.RunAggregate) string {
	sorted := make([]*domain.RunAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.After(sorted[j].StartedAt)
	})

	var sb strings.Builder
	sb.WriteString("| Run | Token | Dry | Holders | OK | Failed | Distributed | Started | Duration |\n")
	sb.WriteString("|-----|-------|-----|---------|----|--------|-------------|---------|----------|\n")
	for _, a := range sorted {
		sb.WriteString(fmt.Sprintf("| %s | %s | %t | %d | %d | %d | %.4f | %s | %dms |\n",
			shortID(a.RunID), a.Token, a.DryRun,
			a.TotalHolders, a.SuccessCount, a.FailureCount, a.TotalDistributed,
			a.StartedAt.UTC().Format(time.RFC3339), a.DurationMs))
	}

	return sb.String()
}

// shortID truncates a run ID for table display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
